// api/middleware/combined_auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/auth"
	"github.com/Annany2002/jobboard-backend/internal/domain"
)

const currentUserKey = "currentUser"

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(tokenString string) (*auth.Claims, error)
}

// UserFinder looks up accounts for authentication.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Authentication identifies the caller from the Authorization header, trying
// a JWT access token under one of headerTypes first and HTTP Basic second.
// Requests without credentials continue anonymously; bad credentials abort
// with 401.
func Authentication(tokens TokenParser, users UserFinder, headerTypes []string) gin.HandlerFunc {
	realm := `Bearer realm="api"`
	if len(headerTypes) > 0 {
		realm = headerTypes[0] + ` realm="api"`
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		scheme := parts[0]

		switch {
		case contains(headerTypes, scheme):
			if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" || strings.Contains(strings.TrimSpace(parts[1]), " ") {
				abortWithError(c, apierror.AuthenticationFailed("Authorization header must contain two space-delimited values").WithHeader("WWW-Authenticate", realm))
				return
			}
			claims, err := tokens.ParseAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				customLog.Debugf("Authentication: token rejected: %v", err)
				abortWithError(c, apierror.AuthenticationFailed("Given token not valid for any token type").Wrap(err).WithHeader("WWW-Authenticate", realm))
				return
			}
			user, err := users.FindUserByID(c.Request.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					abortWithError(c, apierror.AuthenticationFailed("User not found").WithHeader("WWW-Authenticate", realm))
					return
				}
				abortWithError(c, err)
				return
			}
			if !user.IsActive {
				abortWithError(c, apierror.AuthenticationFailed("User is inactive").WithHeader("WWW-Authenticate", realm))
				return
			}
			c.Set(currentUserKey, user)

		case strings.EqualFold(scheme, "basic"):
			basicRealm := `Basic realm="api"`
			email, password, ok := c.Request.BasicAuth()
			if !ok {
				abortWithError(c, apierror.AuthenticationFailed("Invalid basic header. Credentials not correctly base64 encoded.").WithHeader("WWW-Authenticate", basicRealm))
				return
			}
			user, err := users.FindUserByEmail(c.Request.Context(), email)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				abortWithError(c, err)
				return
			}
			if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
				abortWithError(c, apierror.AuthenticationFailed("Invalid username/password.").WithHeader("WWW-Authenticate", basicRealm))
				return
			}
			if !user.IsActive {
				abortWithError(c, apierror.AuthenticationFailed("User inactive or deleted.").WithHeader("WWW-Authenticate", basicRealm))
				return
			}
			c.Set(currentUserKey, user)

		default:
			customLog.Debugf("Authentication: ignoring unknown scheme %q", scheme)
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
