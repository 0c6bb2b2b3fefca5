package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/transport"
)

const msgInternal = "Error interno del servidor"

// ErrorHandler renders every error as the {success:false,error} envelope.
// Only *echo.HTTPError messages reach the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = messageOf(he)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.Fail(msg))
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	default:
		if m == nil {
			return http.StatusText(he.Code)
		}
		return fmt.Sprint(m)
	}
}
