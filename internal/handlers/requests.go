package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/service/requests"
	"github.com/mc-consultoria/proteccion-civil/internal/transport"
	"github.com/mc-consultoria/proteccion-civil/internal/util"
	"github.com/mc-consultoria/proteccion-civil/internal/validation"
)

const msgInvalidFilter = "Filtro o estado inválido"

type RequestHandler struct {
	Svc *requests.Service
}

func (h *RequestHandler) requestError(c echo.Context, op string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", op)
	switch {
	case errors.Is(err, requests.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidFilter)
	case errors.Is(err, requests.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFoundReq)
	case errors.Is(err, requests.ErrUnavailable):
		l.Warn(op+"_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgUnavailable)
	}
	l.Error(op+"_failed", "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
}

func (h *RequestHandler) Dictamenes(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.OK(requests.OptionsFor(models.ServiceDictamen)))
}

func (h *RequestHandler) Tramites(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.OK(requests.OptionsFor(models.ServiceTramite)))
}

// Submit answers 201 when the request was stored and 202 when it was only
// accepted; both carry the WhatsApp and mailto links.
func (h *RequestHandler) Submit(c echo.Context) error {
	var req transport.ServiceRequestForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}

	sub, err := h.Svc.Submit(c.Request().Context(), requests.Form(req))
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return validationFailed(c, verrs)
		}
		return h.requestError(c, "submit_request", err)
	}

	code := http.StatusCreated
	if !sub.Stored {
		code = http.StatusAccepted
	}
	return c.JSON(code, transport.OK(transport.SubmissionResponse{
		Solicitud: sub.Request,
		Stored:    sub.Stored,
		Contacto:  sub.Contact,
	}))
}

func (h *RequestHandler) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), requests.ListQuery{
		Page:   util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:  util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		Tipo:   c.QueryParam("tipo"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return h.requestError(c, "list_requests", err)
	}

	items := page.Items
	if items == nil {
		items = []models.ServiceRequest{}
	}
	return c.JSON(http.StatusOK, transport.OK(transport.RequestListResponse{
		Items: items,
		Meta:  util.NewMeta(page.Offset, page.Limit, page.Total),
	}))
}

func (h *RequestHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	req, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.requestError(c, "get_request", err)
	}
	return c.JSON(http.StatusOK, transport.OK(req))
}

func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body transport.UpdateStatusRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}

	req, err := h.Svc.UpdateStatus(c.Request().Context(), id, body.Status, body.ComentarioAdmin)
	if err != nil {
		return h.requestError(c, "update_request_status", err)
	}
	return c.JSON(http.StatusOK, transport.OK(req))
}
