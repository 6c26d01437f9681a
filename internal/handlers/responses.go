package handlers

import (
	"log/slog"
	"net/http"

	"minibank/internal/errors"

	"github.com/labstack/echo/v4"
)

// TraceIDContextKey matches the key the request ID middleware sets.
const TraceIDContextKey = "trace_id"

// SuccessResponse is the envelope for 2xx bodies.
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

// SendError responds with the envelope for a business or client error code.
// The status comes from the code's catalog mapping.
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	response := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(response.GetHTTPStatus(), response)
}

// SendSystemError responds with the generic 500 envelope and logs the real
// error under the trace ID. The client never sees the original text.
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	response, internal := errors.WrapSystemError(err, traceID)

	slog.Error("internal error",
		"trace_id", traceID,
		"path", c.Request().URL.Path,
		"error", internal.Error(),
	)

	return c.JSON(http.StatusInternalServerError, response)
}
