package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	mw "github.com/mc-consultoria/proteccion-civil/internal/middleware/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/service/catalog"
	"github.com/mc-consultoria/proteccion-civil/internal/transport"
	"github.com/mc-consultoria/proteccion-civil/internal/util"
)

const msgProductRequired = "Título, descripción y categoría son requeridos"

type ProductHandler struct {
	Svc *catalog.Service
}

func (h *ProductHandler) catalogError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgProductRequired)
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFoundProd)
	case errors.Is(err, catalog.ErrUnavailable):
		logging.FromContext(c.Request().Context()).With("handler", op).
			Warn(op+"_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgUnavailable)
	}
	logging.FromContext(c.Request().Context()).With("handler", op).
		Error(op+"_failed", "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), catalog.ListQuery{
		Page:      util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:     util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		Categoria: c.QueryParam("categoria"),
		Search:    c.QueryParam("search"),
	})
	if err != nil {
		return h.catalogError(c, "list_products", err)
	}

	items := page.Items
	if items == nil {
		items = []models.Product{}
	}
	return c.JSON(http.StatusOK, transport.OK(transport.ProductListResponse{
		Items: items,
		Meta:  util.NewMeta(page.Offset, page.Limit, page.Total),
		Demo:  page.Demo,
	}))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	prod, demo, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.catalogError(c, "get_product", err)
	}
	return c.JSON(http.StatusOK, transport.OK(transport.ProductResponse{Product: prod, Demo: demo}))
}

func (h *ProductHandler) GetContact(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	links, err := h.Svc.ContactLinks(c.Request().Context(), id)
	if err != nil {
		return h.catalogError(c, "product_contact", err)
	}
	return c.JSON(http.StatusOK, transport.OK(links))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}

	var createdBy string
	if claims, ok := mw.Claims(c); ok {
		createdBy = claims.Subject
	}

	prod, err := h.Svc.Create(c.Request().Context(), catalog.CreateInput{
		Titulo:           req.Titulo,
		Descripcion:      req.Descripcion,
		Categoria:        req.Categoria,
		ImagenURL:        req.ImagenURL,
		Caracteristicas:  req.Caracteristicas,
		Aplicaciones:     req.Aplicaciones,
		Especificaciones: req.Especificaciones,
	}, createdBy)
	if err != nil {
		return h.catalogError(c, "create_product", err)
	}
	return c.JSON(http.StatusCreated, transport.OK(transport.ProductResponse{Product: prod}))
}

// PatchProduct serves both PUT and PATCH. Absent or blank fields are kept.
func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgBadJSON)
	}

	prod, err := h.Svc.Patch(c.Request().Context(), id, catalog.PatchInput{
		Titulo:           req.Titulo,
		Descripcion:      req.Descripcion,
		Categoria:        req.Categoria,
		ImagenURL:        req.ImagenURL,
		Caracteristicas:  req.Caracteristicas,
		Aplicaciones:     req.Aplicaciones,
		Especificaciones: req.Especificaciones,
	})
	if err != nil {
		return h.catalogError(c, "patch_product", err)
	}
	return c.JSON(http.StatusOK, transport.OK(transport.ProductResponse{Product: prod}))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.catalogError(c, "delete_product", err)
	}
	return c.NoContent(http.StatusNoContent)
}
