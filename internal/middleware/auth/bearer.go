package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/tokens"
)

const claimsKey = "claims"

type BearerMiddleware struct {
	JWTSecret []byte
}

func NewBearerMiddleware(secret []byte) *BearerMiddleware {
	return &BearerMiddleware{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "Acceso denegado")
		}
		return nil
	})
}

func (m *BearerMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "bearer_auth")

		raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			l.Warn("auth_rejected", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "Token de acceso requerido")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_rejected", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Token inválido o expirado")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				l.Warn("auth_rejected", "status", 403, "reason", "role", "role", claims.Role)
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}

// Claims returns the verified token claims stored by RequireAuth/RequireAdmin.
func Claims(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims, ok
}
