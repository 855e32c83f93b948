// api/middleware/error_handler.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/logger"
)

var (
	customLog = logger.Named("api")
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers and middleware report failures with c.Error and abort; the last
// attached error is normalized into the response.
func ErrorHandler(h *apierror.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		resp := h.Handle(err, apierror.Context{
			"view":       ViewName(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		})

		if c.Writer.Written() {
			customLog.Warnf("[ErrorHandler] Response already written before handling error: %v", err)
			return
		}
		for key, values := range resp.Header {
			c.Writer.Header()[key] = values
		}
		c.AbortWithStatusJSON(resp.Status, resp.Body)
	}
}

// Recovery turns a panic into an error for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if r == http.ErrAbortHandler {
					panic(r)
				}
				var err error
				if e, ok := r.(error); ok {
					err = fmt.Errorf("panic: %w", e)
				} else {
					err = fmt.Errorf("panic: %v", r)
				}
				customLog.WithField("stack", string(debug.Stack())).Debug("Recovered from panic")
				c.Error(err)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// abortWithError records err for ErrorHandler and stops the chain.
func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
