package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mc-consultoria/proteccion-civil/internal/fallback"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/service/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/testdb"
)

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func requireHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	require.Equal(t, code, he.Code)
	require.Equal(t, msg, he.Message)
}

func TestPing_DefaultMessage(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/ping", "")
	h := &HealthHandler{}

	require.NoError(t, h.Ping(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"ping"}`, rec.Body.String())
}

func TestLogin_Errors(t *testing.T) {
	h := &AuthHandler{Svc: &auth.Service{Repo: &repo.GormRepo{DB: testdb.New(t)}, Demo: fallback.Default()}}

	c, _ := newContext(http.MethodPost, "/api/auth/login", `{"email":"admin@mc.com"}`)
	requireHTTPError(t, h.Login(c), http.StatusBadRequest, msgLoginRequired)

	c, _ = newContext(http.MethodPost, "/api/auth/login", `{"email":`)
	requireHTTPError(t, h.Login(c), http.StatusBadRequest, msgBadJSON)

	c, _ = newContext(http.MethodPost, "/api/auth/login", `{"email":"admin@mc.com","password":"mal"}`)
	requireHTTPError(t, h.Login(c), http.StatusUnauthorized, msgBadCredentials)

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"email":"admin@mc.com","password":"admin123"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"demo":true`)
}

func TestProfile_WithoutClaims(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/users/profile", "")
	h := &AuthHandler{}
	requireHTTPError(t, h.Profile(c), http.StatusUnauthorized, "Token inválido o expirado")
}

func TestSubmit_ValidationDetails(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/services/solicitar", `{"tipo_servicio":"otro"}`)
	h := &RequestHandler{}

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"tipo_servicio":"Tipo de servicio inválido"`)
}
