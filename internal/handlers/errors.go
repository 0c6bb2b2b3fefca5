package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/transport"
	"github.com/mc-consultoria/proteccion-civil/internal/validation"
)

const (
	msgInternal      = "Error interno del servidor"
	msgBadJSON       = "Cuerpo de la solicitud inválido"
	msgInvalidID     = "Identificador inválido"
	msgUnavailable   = "Servicio no disponible temporalmente"
	msgValidation    = "Datos inválidos"
	msgNotFoundProd  = "Producto no encontrado"
	msgNotFoundReq   = "Solicitud no encontrada"
	msgDBUnreachable = "No se pudo conectar a la base de datos"
)

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}
	return id, nil
}

func validationFailed(c echo.Context, errs validation.Errors) error {
	return c.JSON(http.StatusUnprocessableEntity, transport.Envelope{
		Success: false,
		Error:   msgValidation,
		Details: map[string]any{"validation": errs},
	})
}
