// api/middleware/auth_middleware.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/internal/apierror"
)

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abortWithError(c, apierror.NotAuthenticated().WithHeader("WWW-Authenticate", `Bearer realm="api"`))
			return
		}
		c.Next()
	}
}

// RequireAuthenticatedOrReadOnly lets anonymous callers use safe methods only.
func RequireAuthenticatedOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil && !isSafeMethod(c.Request.Method) {
			abortWithError(c, apierror.NotAuthenticated().WithHeader("WWW-Authenticate", `Bearer realm="api"`))
			return
		}
		c.Next()
	}
}
