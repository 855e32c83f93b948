// internal/apierror/handler.go
package apierror

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/jobboard-backend/internal/logger"
)

// UnexpectedErrorDetail is the only detail clients see for unrecognized errors.
const UnexpectedErrorDetail = "An unexpected error occurred. Please try again later."

var unhandledErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "jobboard",
	Subsystem: "api",
	Name:      "unhandled_errors_total",
	Help:      "Errors that reached the API boundary without a known mapping.",
})

// Context carries request metadata (view name, method, path) into the handler.
type Context map[string]any

// Handler normalizes errors raised while serving API requests.
type Handler struct {
	table *Table
	log   *logrus.Entry
}

// NewHandler builds a handler over table. A nil table means DefaultTable and
// a nil log means the process logger.
func NewHandler(table *Table, log *logrus.Entry) *Handler {
	if table == nil {
		table = DefaultTable()
	}
	if log == nil {
		log = logger.Named("apierror")
	}
	return &Handler{table: table, log: log}
}

// Handle always returns a response. Recognized errors get the table's
// response unchanged; anything else is logged once at error level and
// answered with a generic 500.
func (h *Handler) Handle(err error, ctx Context) *Response {
	resp, rulePanic := h.delegate(err)
	if resp != nil {
		return resp
	}

	entry := h.log.WithError(err).WithField("context", ctx)
	if rulePanic != nil {
		entry = entry.WithField("rule_panic", fmt.Sprint(rulePanic))
	}
	entry.Error("Unhandled exception in API.")
	unhandledErrors.Inc()

	return &Response{
		Status: http.StatusInternalServerError,
		Body:   DetailBody{Detail: UnexpectedErrorDetail},
		Header: http.Header{},
	}
}

func (h *Handler) delegate(err error) (resp *Response, rulePanic any) {
	defer func() {
		if r := recover(); r != nil {
			resp, rulePanic = nil, r
		}
	}()
	return h.table.Lookup(err), nil
}
