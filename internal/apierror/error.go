// internal/apierror/error.go
package apierror

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

// Kind tags the API error variants known to the default mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindParseError
	KindValidation
	KindBadRequest
	KindAuthenticationFailed
	KindNotAuthenticated
	KindPermissionDenied
	KindNotFound
	KindMethodNotAllowed
	KindUnsupportedMediaType
	KindThrottled
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindParseError:           "parse_error",
	KindValidation:           "invalid",
	KindBadRequest:           "bad_request",
	KindAuthenticationFailed: "authentication_failed",
	KindNotAuthenticated:     "not_authenticated",
	KindPermissionDenied:     "permission_denied",
	KindNotFound:             "not_found",
	KindMethodNotAllowed:     "method_not_allowed",
	KindUnsupportedMediaType: "unsupported_media_type",
	KindThrottled:            "throttled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FieldErrors is the body of a validation error: field name to messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) FieldErrors {
	f[field] = append(f[field], msg)
	return f
}

// Error is an API error with a known status and client-safe detail.
type Error struct {
	Kind   Kind
	Status int
	// Detail is a string, or FieldErrors for validation failures.
	Detail any
	Header http.Header
	// Wait is set for throttled requests.
	Wait time.Duration
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (%d): %v", e.Kind, e.Status, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// WithHeader returns e with an extra response header.
func (e *Error) WithHeader(key, value string) *Error {
	if e.Header == nil {
		e.Header = http.Header{}
	}
	e.Header.Set(key, value)
	return e
}

// Wrap records the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(kind Kind, status int, detail any) *Error {
	return &Error{Kind: kind, Status: status, Detail: detail}
}

func detailOr(detail []string, fallback string) string {
	if len(detail) > 0 && detail[0] != "" {
		return detail[0]
	}
	return fallback
}

// ParseError reports a malformed request body.
func ParseError(detail ...string) *Error {
	return newError(KindParseError, http.StatusBadRequest, detailOr(detail, "Malformed request."))
}

// Validation reports per-field input errors.
func Validation(fields FieldErrors) *Error {
	return newError(KindValidation, http.StatusBadRequest, fields)
}

// BadRequest reports a generic client error.
func BadRequest(detail string) *Error {
	return newError(KindBadRequest, http.StatusBadRequest, detail)
}

// AuthenticationFailed reports credentials that were supplied but rejected.
func AuthenticationFailed(detail ...string) *Error {
	return newError(KindAuthenticationFailed, http.StatusUnauthorized, detailOr(detail, "Incorrect authentication credentials."))
}

// NotAuthenticated reports a request without credentials on a protected resource.
func NotAuthenticated() *Error {
	return newError(KindNotAuthenticated, http.StatusUnauthorized, "Authentication credentials were not provided.")
}

func PermissionDenied(detail ...string) *Error {
	return newError(KindPermissionDenied, http.StatusForbidden, detailOr(detail, "You do not have permission to perform this action."))
}

func NotFound(detail ...string) *Error {
	return newError(KindNotFound, http.StatusNotFound, detailOr(detail, "Not found."))
}

func MethodNotAllowed(method string) *Error {
	return newError(KindMethodNotAllowed, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", method))
}

func UnsupportedMediaType(mediaType string) *Error {
	return newError(KindUnsupportedMediaType, http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported media type %q in request.", mediaType))
}

// Throttled reports a rate-limited request; wait is rounded up to whole
// seconds and exposed through Retry-After.
func Throttled(wait time.Duration) *Error {
	detail := "Request was throttled."
	e := newError(KindThrottled, http.StatusTooManyRequests, detail)
	if wait > 0 {
		seconds := int(math.Ceil(wait.Seconds()))
		unit := "seconds"
		if seconds == 1 {
			unit = "second"
		}
		e.Detail = fmt.Sprintf("%s Expected available in %d %s.", detail, seconds, unit)
		e.Wait = wait
		e.WithHeader("Retry-After", fmt.Sprint(seconds))
	}
	return e
}
