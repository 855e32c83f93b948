package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ThrottledRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_throttled_requests_total",
		Help: "Total number of requests rejected by a throttle scope",
	}, []string{"scope"})

	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_applications_submitted_total",
		Help: "Total number of job applications submitted",
	})

	MailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_mail_failures_total",
		Help: "Total number of emails that could not be delivered",
	})
)
