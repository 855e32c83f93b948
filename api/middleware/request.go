// api/middleware/request.go
package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/metrics"
)

const (
	requestIDKey    = "requestID"
	viewKey         = "view"
	RequestIDHeader = "X-Request-ID"
)

var hostValidation = regexp.MustCompile(`^([a-z0-9.-]+|\[[a-f0-9]*:[a-f0-9.:]+\])(:[0-9]+)?$`)

// RequestLogger tags the request with an ID and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		entry := customLog.WithFields(logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"latency":    latency,
			"size":       c.Writer.Size(),
			"request_id": requestID,
		})
		switch {
		case status >= 500:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// View names the endpoint for error reports.
func View(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(viewKey, name)
		c.Next()
	}
}

// ViewName returns the name set by View, if any.
func ViewName(c *gin.Context) string {
	return c.GetString(viewKey)
}

// AllowedHosts rejects requests whose Host header matches none of hosts.
// "*" matches any host and a leading dot matches the domain and all of its
// subdomains. In debug mode an empty list allows the local hosts.
func AllowedHosts(hosts []string, debug bool) gin.HandlerFunc {
	allowed := hosts
	if debug && len(allowed) == 0 {
		allowed = []string{".localhost", "127.0.0.1", "[::1]"}
	}

	return func(c *gin.Context) {
		host := c.Request.Host
		domain := hostDomain(host)
		if domain != "" && validateHost(domain, allowed) {
			c.Next()
			return
		}

		msg := fmt.Sprintf("Invalid HTTP_HOST header: '%s'.", host)
		if domain != "" {
			msg += fmt.Sprintf(" You may need to add '%s' to ALLOWED_HOSTS.", domain)
		} else {
			msg += " The domain name provided is not valid according to RFC 1034/1035."
		}
		customLog.Warn(msg)
		abortWithError(c, apierror.BadRequest(msg))
	}
}

func hostDomain(host string) string {
	m := hostValidation.FindStringSubmatch(strings.ToLower(host))
	if m == nil {
		return ""
	}
	return strings.TrimSuffix(m[1], ".")
}

func validateHost(domain string, allowed []string) bool {
	for _, pattern := range allowed {
		pattern = strings.ToLower(pattern)
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "."):
			if strings.HasSuffix(domain, pattern) || domain == pattern[1:] {
				return true
			}
		case pattern == domain:
			return true
		}
	}
	return false
}
