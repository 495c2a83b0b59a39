package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
)

// ErrorHandler renders every error in the uniform {code, message, field?,
// details?} shape. Service-layer errors keep their taxonomy code and mapped
// status; anything else is a plain http_error or internal_error.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if e, ok := apperr.As(err); ok {
			_ = c.JSON(e.HTTPStatus(), e)
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, map[string]any{"code": "http_error", "message": msg})
			return
		}

		logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, map[string]any{
			"code":    "internal_error",
			"message": "internal server error",
		})
	}
}
