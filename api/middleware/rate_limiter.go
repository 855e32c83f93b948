// api/middleware/rate_limiter.go
package middleware

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/metrics"
)

const sweepEvery = 1024

// RateLimiter is a sliding-window limiter keyed by caller.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	calls    int
	now      func() time.Time
}

func NewRateLimiter(rate config.Rate) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    rate.Requests,
		window:   rate.Period,
		now:      time.Now,
	}
}

// Allow records a request for key. When the limit is reached it returns false
// and how long until the oldest request leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	rl.calls++
	if rl.calls%sweepEvery == 0 {
		rl.sweep(windowStart)
	}

	requests := rl.requests[key]
	filteredRequests := requests[:0]
	for _, t := range requests {
		if t.After(windowStart) {
			filteredRequests = append(filteredRequests, t)
		}
	}
	rl.requests[key] = filteredRequests

	if len(filteredRequests) >= rl.limit {
		return false, filteredRequests[0].Add(rl.window).Sub(now)
	}

	rl.requests[key] = append(filteredRequests, now)
	return true, 0
}

// sweep drops keys with no request inside the window.
func (rl *RateLimiter) sweep(windowStart time.Time) {
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(windowStart) {
			delete(rl.requests, key)
		}
	}
}

// Throttles holds one limiter per configured rate.
type Throttles struct {
	anon   *RateLimiter
	user   *RateLimiter
	scopes map[string]*RateLimiter
	cfg    config.ThrottleConfig
	mutex  sync.Mutex
}

func NewThrottles(cfg config.ThrottleConfig) *Throttles {
	return &Throttles{
		anon:   NewRateLimiter(cfg.Anon),
		user:   NewRateLimiter(cfg.User),
		scopes: map[string]*RateLimiter{},
		cfg:    cfg,
	}
}

// Anon limits unauthenticated callers by IP.
func (t *Throttles) Anon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		throttle(c, "anon", t.anon, "anon:"+getIP(c))
	}
}

// User limits authenticated callers by account, anonymous ones by IP.
func (t *Throttles) User() gin.HandlerFunc {
	return func(c *gin.Context) {
		throttle(c, "user", t.user, identity(c))
	}
}

// Scoped limits a group of views sharing the named rate. Unknown scopes are a
// configuration error.
func (t *Throttles) Scoped(scope string) (gin.HandlerFunc, error) {
	rate, ok := t.cfg.Scope(scope)
	if !ok {
		return nil, fmt.Errorf("%w: no throttle rate set for scope %q", config.ErrImproperlyConfigured, scope)
	}

	t.mutex.Lock()
	rl, ok := t.scopes[scope]
	if !ok {
		rl = NewRateLimiter(rate)
		t.scopes[scope] = rl
	}
	t.mutex.Unlock()

	return func(c *gin.Context) {
		throttle(c, scope, rl, scope+":"+identity(c))
	}, nil
}

func throttle(c *gin.Context, scope string, rl *RateLimiter, key string) {
	if ok, wait := rl.Allow(key); !ok {
		metrics.ThrottledRequests.WithLabelValues(scope).Inc()
		abortWithError(c, apierror.Throttled(wait))
		return
	}
	c.Next()
}

func identity(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return fmt.Sprintf("user:%d", user.ID)
	}
	return "ip:" + getIP(c)
}

func getIP(c *gin.Context) string {
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.ClientIP()
	}
	return ip
}
