package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"minibank/internal/errors"

	"github.com/labstack/echo/v4"
)

// PanicRecovery converts handler panics into a generic 500 response. The panic
// value and stack stay in the server log, keyed by trace ID; the client only
// sees the standard system error envelope.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				slog.Error("panic recovered",
					"trace_id", traceID,
					"panic", r,
					"stack", string(debug.Stack()),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
				)

				resp := errors.NewErrorResponse(errors.SystemInternalError, traceID)
				if err := c.JSON(http.StatusInternalServerError, resp); err != nil {
					slog.Error("failed to send panic response", "trace_id", traceID, "error", err)
				}
			}()

			return next(c)
		}
	}
}
