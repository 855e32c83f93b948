// api/handlers/handlers.go
package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/domain"
	"github.com/Annany2002/jobboard-backend/internal/logger"
)

var (
	customLog = logger.Named("handlers")
)

// bindJSON decodes a JSON body into obj. A body declared as another media
// type is rejected with 415.
func bindJSON(c *gin.Context, obj any) error {
	if ct := c.ContentType(); ct != "" && ct != gin.MIMEJSON {
		return apierror.UnsupportedMediaType(ct)
	}
	return c.ShouldBindJSON(obj)
}

// pathID parses a numeric path parameter; malformed IDs are reported as missing.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apierror.NotFound()
	}
	return id, nil
}

// requestURL is the absolute URL of the current request.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

// translateDomainError turns job board errors into field validation errors.
// Other errors are returned unchanged.
func translateDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrApplicationWorkflow):
		return apierror.Validation(apierror.FieldErrors{"status": {domainMessage(err, domain.ErrApplicationWorkflow)}}).Wrap(err)
	case errors.Is(err, domain.ErrInvalidResume):
		return apierror.Validation(apierror.FieldErrors{"resume": {domainMessage(err, domain.ErrInvalidResume)}}).Wrap(err)
	}
	return err
}

// domainMessage strips the sentinel prefix and formats the rest as a sentence.
func domainMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		msg = strings.TrimPrefix(sentinel.Error(), domain.ErrJobBoard.Error()+": ")
	}
	return fmt.Sprintf("%s%s.", strings.ToUpper(msg[:1]), strings.TrimSuffix(msg[1:], "."))
}
