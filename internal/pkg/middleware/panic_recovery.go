package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/logger"
)

// PanicRecoveryMiddleware recovers from panics in handlers, logs the stack
// trace and returns a 500 response.
func PanicRecoveryMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					handlePanic(c, r)
				}
			}()

			return next(c)
		}
	}
}

func handlePanic(c echo.Context, r interface{}) {
	logger.Error("Panic recovered during request processing",
		logger.Any("panic_value", r),
		logger.String("panic_type", fmt.Sprintf("%T", r)),
		logger.String("stack_trace", string(debug.Stack())),
		logger.String("method", c.Request().Method),
		logger.String("path", c.Request().URL.Path),
		logger.String("client_ip", c.RealIP()),
		logger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))

	if !c.Response().Committed {
		if err := c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Internal Server Error",
			"message": "An unexpected error occurred while processing your request",
		}); err != nil {
			c.String(http.StatusInternalServerError, "Internal Server Error")
		}
	}
}
