package middleware

import (
	"errors"
	"fmt"
	"mySmartMarket/business/recommend"
	"mySmartMarket/pkg/logger"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string `json:"message"`
}

// ErrorHandler renders errors that escape handlers, echo's own routing
// errors included, in the same shape handlers use.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled_error",
			"trace_id", recommend.TraceIDFromContext(c.Request().Context()),
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorResponse{Message: message})
	}
	if writeErr != nil {
		logger.Error("error_response_failed", "error", writeErr)
	}
}
