package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	mw "github.com/mc-consultoria/proteccion-civil/internal/middleware/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/service/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/transport"
)

const (
	msgLoginRequired    = "Email y contraseña son requeridos"
	msgRegisterRequired = "Email, contraseña, nombre y apellido paterno son requeridos"
	msgBadCredentials   = "Credenciales incorrectas"
	msgEmailTaken       = "El email ya está registrado"
	msgEmailFormat      = "Formato de correo electrónico inválido"
	msgCreateFailed     = "Error al crear la cuenta"
)

type AuthHandler struct {
	Svc *auth.Service
}

func authResponse(res *auth.Result) transport.AuthResponse {
	out := transport.AuthResponse{
		User:  transport.UserResponse(res.User),
		Token: res.Token,
		Demo:  res.Demo,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid JSON", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgLoginRequired)
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgLoginRequired)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
	default:
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, transport.OK(authResponse(res)))
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid JSON", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}
	if req.Email == "" || req.Password == "" || req.Nombre == "" || req.ApellidoPaterno == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgRegisterRequired)
	}

	res, err := h.Svc.Register(c.Request().Context(), auth.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
	})
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidEmail):
		return echo.NewHTTPError(http.StatusBadRequest, msgEmailFormat)
	case errors.Is(err, auth.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgRegisterRequired)
	case errors.Is(err, auth.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, msgEmailTaken)
	case errors.Is(err, auth.ErrCreateFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, msgCreateFailed)
	default:
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusCreated, transport.OK(authResponse(res)))
}

// Logout is stateless: the client drops its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.OK(map[string]string{"message": "Sesión cerrada"}))
}

func (h *AuthHandler) Profile(c echo.Context) error {
	claims, ok := mw.Claims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token inválido o expirado")
	}
	return c.JSON(http.StatusOK, transport.OK(transport.ProfileResponse{
		UserResponse: transport.UserResponse{
			ID:       claims.Subject,
			Email:    claims.Email,
			FullName: claims.FullName,
			Role:     claims.Role,
		},
		Demo: claims.Demo,
	}))
}
