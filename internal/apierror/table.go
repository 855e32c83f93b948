// internal/apierror/table.go
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/jobboard-backend/internal/domain"
)

// Response is a rendered API error.
type Response struct {
	Status int
	Body   any
	Header http.Header
}

// DetailBody is the body shape of every non-validation error.
type DetailBody struct {
	Detail string `json:"detail"`
}

// Rule maps one category of errors to a response.
type Rule struct {
	Name   string
	Match  func(err error) bool
	Render func(err error) *Response
}

// Table is an ordered list of rules. The first matching rule renders the
// response. Tables are populated at startup and only read afterwards.
type Table struct {
	rules []Rule
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// DefaultTable returns the standard REST mapping: API errors, missing
// objects, permission failures, request validation and body parse errors.
func DefaultTable() *Table {
	t := NewTable()
	t.Register(Rule{
		Name: "api_error",
		Match: func(err error) bool {
			var apiErr *Error
			return errors.As(err, &apiErr)
		},
		Render: func(err error) *Response {
			var apiErr *Error
			errors.As(err, &apiErr)
			return Render(apiErr)
		},
	})
	t.Register(Rule{
		Name:   "not_found",
		Match:  func(err error) bool { return errors.Is(err, domain.ErrNotFound) },
		Render: func(error) *Response { return Render(NotFound()) },
	})
	t.Register(Rule{
		Name:   "permission_denied",
		Match:  func(err error) bool { return errors.Is(err, domain.ErrPermissionDenied) },
		Render: func(error) *Response { return Render(PermissionDenied()) },
	})
	t.Register(Rule{
		Name: "validation",
		Match: func(err error) bool {
			var verrs validator.ValidationErrors
			return errors.As(err, &verrs)
		},
		Render: func(err error) *Response {
			var verrs validator.ValidationErrors
			errors.As(err, &verrs)
			return Render(Validation(FieldErrorsFromValidator(verrs)))
		},
	})
	t.Register(Rule{
		Name:   "parse_error",
		Match:  isParseError,
		Render: func(err error) *Response { return Render(ParseError(parseDetail(err))) },
	})
	return t
}

// Register appends a rule; earlier rules take precedence.
func (t *Table) Register(rule Rule) {
	t.rules = append(t.rules, rule)
}

// Lookup renders err with the first matching rule, or returns nil when no
// rule recognizes it.
func (t *Table) Lookup(err error) *Response {
	if err == nil {
		return nil
	}
	for _, rule := range t.rules {
		if rule.Match(err) {
			return rule.Render(err)
		}
	}
	return nil
}

// Render converts an API error into its response.
func Render(e *Error) *Response {
	resp := &Response{Status: e.Status, Header: http.Header{}}
	for k, v := range e.Header {
		resp.Header[k] = append([]string(nil), v...)
	}
	switch detail := e.Detail.(type) {
	case FieldErrors:
		resp.Body = detail
	case string:
		resp.Body = DetailBody{Detail: detail}
	default:
		resp.Body = DetailBody{Detail: fmt.Sprint(detail)}
	}
	return resp
}

// FieldErrorsFromValidator turns validator errors into per-field messages.
func FieldErrorsFromValidator(verrs validator.ValidationErrors) FieldErrors {
	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), validationMessage(fe))
	}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case "url":
		return "Enter a valid URL."
	}
	return "Invalid value."
}

func isParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func parseDetail(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("JSON parse error - field %q must be of type %s.", typeErr.Field, typeErr.Type)
	}
	if errors.Is(err, io.EOF) {
		return "JSON parse error - request body is empty."
	}
	return "JSON parse error - " + err.Error()
}
