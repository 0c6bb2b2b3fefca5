package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mc-consultoria/proteccion-civil/internal/contact"
	"github.com/mc-consultoria/proteccion-civil/internal/events"
	"github.com/mc-consultoria/proteccion-civil/internal/fallback"
	"github.com/mc-consultoria/proteccion-civil/internal/handlers"
	"github.com/mc-consultoria/proteccion-civil/internal/hash"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	loggingmw "github.com/mc-consultoria/proteccion-civil/internal/middleware/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/service/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/service/catalog"
	"github.com/mc-consultoria/proteccion-civil/internal/service/requests"
	"github.com/mc-consultoria/proteccion-civil/internal/service/search"
	"github.com/mc-consultoria/proteccion-civil/internal/testdb"
	"github.com/mc-consultoria/proteccion-civil/internal/tokens"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Events *events.Recorder
	Issuer *tokens.Issuer
}

type envelope struct {
	Success bool                         `json:"success"`
	Data    json.RawMessage              `json:"data"`
	Error   string                       `json:"error"`
	Details map[string]map[string]string `json:"details"`
}

func newTestEnv(t *testing.T, gdb *gorm.DB) *testEnv {
	t.Helper()

	rec := &events.Recorder{}
	issuer := &tokens.Issuer{Secret: testSecret, TTL: time.Hour}
	store := &repo.GormRepo{DB: gdb}
	info := contact.Info{WhatsAppNumber: "5219611553538", Email: "mc.consultoria@gmail.com"}

	authSvc := &auth.Service{Repo: store, Demo: fallback.Default(), Hasher: hash.Simple{}, Tokens: issuer, Events: rec}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))

	Register(e, &Deps{
		HealthHandler:  &handlers.HealthHandler{PingMessage: "pong", Auth: authSvc},
		AuthHandler:    &handlers.AuthHandler{Svc: authSvc},
		ProductHandler: &handlers.ProductHandler{Svc: &catalog.Service{Repo: store, Search: search.Disabled{}, Events: rec, Contact: info}},
		RequestHandler: &handlers.RequestHandler{Svc: &requests.Service{Repo: store, Events: rec, Contact: info}},
		JWTSecret:      testSecret,
	})

	return &testEnv{E: e, DB: gdb, Events: rec, Issuer: issuer}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var out envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (env *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := env.Issuer.Issue(tokens.Subject{ID: uuid.NewString(), Email: role + "@mc.com", FullName: "Test " + role, Role: role})
	require.NoError(t, err)
	return tok
}

type authData struct {
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
	Demo  bool   `json:"demo"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndPing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	rec, _ := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())

	rec, out := env.do(t, http.MethodGet, "/api/test-db", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Success)
	assert.NotEmpty(t, decode[map[string]string](t, out.Data)["now"])

	rec, _ = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.Unreachable(t))

	rec, out := env.do(t, http.MethodGet, "/api/test-db", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)

	rec, _ = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"down"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
		wantErr  string
		wantDemo bool
	}{
		{"missing password", map[string]string{"email": "admin@mc.com"}, http.StatusBadRequest, "Email y contraseña son requeridos", false},
		{"wrong password", map[string]string{"email": "admin@mc.com", "password": "nope"}, http.StatusUnauthorized, "Credenciales incorrectas", false},
		{"unknown user", map[string]string{"email": "x@mc.com", "password": "x"}, http.StatusUnauthorized, "Credenciales incorrectas", false},
		{"demo admin", map[string]string{"email": "ADMIN@mc.com", "password": "admin123"}, http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := env.do(t, http.MethodPost, "/api/auth/login", tt.body, "")
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.False(t, out.Success)
				assert.Equal(t, tt.wantErr, out.Error)
				return
			}
			assert.True(t, out.Success)
			data := decode[authData](t, out.Data)
			assert.Equal(t, tt.wantDemo, data.Demo)
			assert.Equal(t, "admin", data.User.Role)
			assert.Equal(t, "Administrador MC", data.User.FullName)
			assert.NotEmpty(t, data.Token)
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	body := map[string]string{
		"email":            "Ana@Empresa.com",
		"password":         "secreto123",
		"nombre":           "Ana",
		"apellido_paterno": "Ruiz",
	}
	rec, out := env.do(t, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode[authData](t, out.Data)
	assert.False(t, data.Demo)
	assert.Equal(t, "ana@empresa.com", data.User.Email)
	assert.Equal(t, "Ana Ruiz", data.User.FullName)
	assert.Equal(t, "user", data.User.Role)

	var stored models.User
	require.NoError(t, env.DB.Where("email = ?", "ana@empresa.com").First(&stored).Error)
	assert.Equal(t, hash.SimpleHash("secreto123"), stored.PasswordHash)

	last, ok := env.Events.Last()
	require.True(t, ok)
	assert.Equal(t, events.TopicUsers, last.Topic)
	assert.Equal(t, "user_registered", last.Event["type"])

	rec, out = env.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "El email ya está registrado", out.Error)

	rec, out = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@empresa.com", "password": "secreto123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decode[authData](t, out.Data)
	assert.False(t, data.Demo)
	assert.Equal(t, stored.ID.String(), data.User.ID)

	rec, out = env.do(t, http.MethodGet, "/api/users/profile", nil, data.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, out.Data)
	assert.Equal(t, "ana@empresa.com", profile["email"])
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	rec, out := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "a@b.com", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email, contraseña, nombre y apellido paterno son requeridos", out.Error)

	rec, out = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "no-es-email", "password": "x", "nombre": "Ana", "apellido_paterno": "Ruiz",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Formato de correo electrónico inválido", out.Error)
}

func TestAuth_StoreDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.Unreachable(t))

	rec, out := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "user@mc.com", "password": "user123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[authData](t, out.Data).Demo)

	rec, out = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "user@mc.com", "password": "x", "nombre": "Otro", "apellido_paterno": "Usuario",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "El email ya está registrado", out.Error)

	rec, out = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "nuevo@mc.com", "password": "x", "nombre": "Nuevo", "apellido_paterno": "Usuario",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decode[authData](t, out.Data)
	assert.True(t, data.Demo)
	assert.Equal(t, "Nuevo Usuario", data.User.FullName)
}

func TestProfile_RequiresToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	rec, out := env.do(t, http.MethodGet, "/api/users/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token de acceso requerido", out.Error)

	rec, out = env.do(t, http.MethodGet, "/api/users/profile", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token inválido o expirado", out.Error)

	rec, _ = env.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProducts_AdminLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))
	admin := env.token(t, models.RoleAdmin)

	body := map[string]any{
		"titulo":          "Extintor PQS 6kg",
		"descripcion":     "Extintor de polvo químico seco",
		"categoria":       "extintores",
		"caracteristicas": []string{"Recargable", " "},
	}

	rec, out := env.do(t, http.MethodPost, "/api/products", body, env.token(t, models.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acceso denegado", out.Error)

	rec, out = env.do(t, http.MethodPost, "/api/products", map[string]any{"titulo": "x"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, out.Success)

	rec, out = env.do(t, http.MethodPost, "/api/products", body, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Product models.Product `json:"product"`
	}](t, out.Data).Product
	assert.Equal(t, []string{"Recargable"}, created.Caracteristicas)

	path := "/api/products/" + created.ID.String()

	rec, out = env.do(t, http.MethodGet, "/api/products?search=extintor", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items []models.Product `json:"items"`
		Meta  struct {
			Total int64 `json:"total"`
		} `json:"meta"`
		Demo bool `json:"demo"`
	}](t, out.Data)
	assert.EqualValues(t, 1, list.Meta.Total)
	assert.False(t, list.Demo)

	rec, out = env.do(t, http.MethodPatch, path, map[string]any{"titulo": "Extintor PQS 9kg", "descripcion": ""}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[struct {
		Product models.Product `json:"product"`
	}](t, out.Data).Product
	assert.Equal(t, "Extintor PQS 9kg", patched.Titulo)
	assert.Equal(t, "Extintor de polvo químico seco", patched.Descripcion)

	rec, out = env.do(t, http.MethodGet, path+"/contacto", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	links := decode[contact.Links](t, out.Data)
	assert.Contains(t, links.WhatsApp, "https://wa.me/5219611553538?text=")
	assert.Contains(t, links.Mailto, "mailto:mc.consultoria@gmail.com?subject=Consulta%20sobre")

	rec, _ = env.do(t, http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, out = env.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Producto no encontrado", out.Error)

	types := make([]any, 0, len(env.Events.Events))
	for _, ev := range env.Events.Events {
		if ev.Topic == events.TopicProducts {
			types = append(types, ev.Event["type"])
		}
	}
	assert.Equal(t, []any{"product_created", "product_updated", "product_deleted"}, types)
}

func TestProducts_BadIDAndStoreDown(t *testing.T) {
	t.Parallel()

	up := newTestEnv(t, testdb.New(t))
	rec, out := up.do(t, http.MethodGet, "/api/products/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Identificador inválido", out.Error)

	down := newTestEnv(t, testdb.Unreachable(t))
	rec, out = down.do(t, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items []models.Product `json:"items"`
		Demo  bool             `json:"demo"`
	}](t, out.Data)
	assert.True(t, list.Demo)
	assert.Len(t, list.Items, 3)

	rec, out = down.do(t, http.MethodGet, "/api/products/"+list.Items[0].ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct {
		Demo bool `json:"demo"`
	}](t, out.Data).Demo)

	rec, _ = down.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, out = down.do(t, http.MethodGet, "/api/products?page=9223372036854775807", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	huge := decode[struct {
		Items []models.Product `json:"items"`
		Meta  struct {
			Page    int  `json:"page"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}](t, out.Data)
	assert.Empty(t, huge.Items)
	assert.Positive(t, huge.Meta.Page)
	assert.False(t, huge.Meta.HasNext)
}

func validForm() map[string]string {
	return map[string]string{
		"tipo_servicio":    models.ServiceDictamen,
		"subtipo_servicio": requests.DictamenOptions[0],
		"email":            "Ana@Empresa.com",
		"nombre":           "Ana",
		"apellido_paterno": "Ruiz",
		"telefono":         "9611234567",
		"nombre_empresa":   "Empresa SA",
		"ubicacion":        "Tuxtla Gutiérrez",
	}
}

type submission struct {
	Solicitud models.ServiceRequest `json:"solicitud"`
	Stored    bool                  `json:"stored"`
	Contacto  contact.Links         `json:"contacto"`
}

func TestServiceRequests_SubmitAndAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))
	admin := env.token(t, models.RoleAdmin)

	rec, out := env.do(t, http.MethodGet, "/api/services/dictamenes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]string](t, out.Data), 6)

	rec, out = env.do(t, http.MethodPost, "/api/services/solicitar", validForm(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[submission](t, out.Data)
	assert.True(t, sub.Stored)
	assert.Equal(t, "961-123-4567", sub.Solicitud.Telefono)
	assert.Equal(t, "ana@empresa.com", sub.Solicitud.Email)
	assert.Equal(t, models.StatusPending, sub.Solicitud.Status)
	assert.NotEmpty(t, sub.Contacto.WhatsApp)
	assert.NotEmpty(t, sub.Contacto.Mailto)

	rec, _ = env.do(t, http.MethodGet, "/api/solicitudes", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out = env.do(t, http.MethodGet, "/api/solicitudes?status=pendiente", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items []models.ServiceRequest `json:"items"`
	}](t, out.Data)
	require.Len(t, list.Items, 1)

	rec, _ = env.do(t, http.MethodGet, "/api/solicitudes?status=nope", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/solicitudes/" + sub.Solicitud.ID.String()
	rec, out = env.do(t, http.MethodPut, path+"/status", map[string]string{"status": models.StatusInProgress, "comentario_admin": "Visita agendada"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.ServiceRequest](t, out.Data)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	require.NotNil(t, updated.ComentarioAdmin)
	assert.Equal(t, "Visita agendada", *updated.ComentarioAdmin)

	rec, _ = env.do(t, http.MethodPut, path+"/status", map[string]string{"status": "archivado"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.do(t, http.MethodGet, "/api/solicitudes/"+uuid.NewString(), nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Solicitud no encontrada", out.Error)
}

func TestServiceRequests_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	form := validForm()
	form["telefono"] = "123"
	form["subtipo_servicio"] = "Otro"
	delete(form, "ubicacion")

	rec, out := env.do(t, http.MethodPost, "/api/services/solicitar", form, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, out.Success)
	v := out.Details["validation"]
	assert.Contains(t, v, "telefono")
	assert.Equal(t, "Subtipo de servicio inválido", v["subtipo_servicio"])
	assert.Contains(t, v, "ubicacion")
	assert.NotContains(t, v, "email")
}

func TestServiceRequests_StoreDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.Unreachable(t))

	rec, out := env.do(t, http.MethodPost, "/api/services/solicitar", validForm(), "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	sub := decode[submission](t, out.Data)
	assert.False(t, sub.Stored)
	assert.Equal(t, uuid.Nil, sub.Solicitud.ID)
	assert.Contains(t, sub.Contacto.Mailto, "mailto:mc.consultoria@gmail.com")

	last, ok := env.Events.Last()
	require.True(t, ok)
	assert.Equal(t, "service_requested", last.Event["type"])
	assert.Equal(t, false, last.Event["stored"])
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testdb.New(t))

	rec, out := env.do(t, http.MethodGet, "/api/nada", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}
