// api/handlers/application_handler.go
package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/api/middleware"
	"github.com/Annany2002/jobboard-backend/api/models"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/core"
	"github.com/Annany2002/jobboard-backend/internal/domain"
	"github.com/Annany2002/jobboard-backend/internal/mail"
	"github.com/Annany2002/jobboard-backend/internal/metrics"
	"github.com/Annany2002/jobboard-backend/internal/resume"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

// multipartOverhead is allowed on top of the resume limit for the other
// form fields and part headers.
const multipartOverhead = 1 << 20

// ApplicationHandler serves job applications.
type ApplicationHandler struct {
	Store         *storage.Store
	Cfg           *config.Config
	Mailer        mail.Mailer
	MaxResumeSize int64
}

func NewApplicationHandler(store *storage.Store, cfg *config.Config, mailer mail.Mailer) *ApplicationHandler {
	return &ApplicationHandler{
		Store:         store,
		Cfg:           cfg,
		Mailer:        mailer,
		MaxResumeSize: resume.DefaultMaxSize,
	}
}

// Apply submits the current user's application to a job. The request is
// multipart/form-data with a "resume" file and an optional "cover_letter".
func (h *ApplicationHandler) Apply(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	jobID, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	job, err := h.Store.GetJob(ctx, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if job.PostedBy == user.ID {
		_ = c.Error(apierror.PermissionDenied("You cannot apply to your own job posting."))
		return
	}

	if mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type")); mediaType != gin.MIMEMultipartPOSTForm {
		_ = c.Error(apierror.UnsupportedMediaType(c.GetHeader("Content-Type")))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxResumeSize+multipartOverhead)

	var req models.ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(h.uploadError(err))
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(h.uploadError(err))
			return
		}
		_ = c.Error(apierror.Validation(apierror.FieldErrors{"resume": {"No file was submitted."}}).Wrap(err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer file.Close()

	upload, err := resume.Parse(fileHeader.Filename, file, h.MaxResumeSize)
	if err != nil {
		_ = c.Error(translateDomainError(err))
		return
	}

	app := &domain.Application{
		JobID:       job.ID,
		ApplicantID: user.ID,
		CoverLetter: req.CoverLetter,
		ResumeName:  upload.Name,
		ResumeType:  upload.ContentType,
		ResumeData:  upload.Data,
	}
	if err := h.Store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrAlreadyApplied) {
			err = apierror.Validation(apierror.FieldErrors{"non_field_errors": {"You have already applied to this job."}}).Wrap(err)
		}
		_ = c.Error(err)
		return
	}

	metrics.ApplicationsSubmitted.Inc()
	customLog.Infof("Handler: User %d applied to job %d (application %d)", user.ID, job.ID, app.ID)
	mail.SendLogged(ctx, h.Mailer, mail.ApplicationReceipt(user, job, app))

	c.JSON(http.StatusCreated, app)
}

// uploadError reports an oversized body as an invalid resume.
func (h *ApplicationHandler) uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return translateDomainError(fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidResume, h.MaxResumeSize))
	}
	return err
}

// ListApplications returns a page of the current user's applications.
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	user := middleware.CurrentUser(c)

	opts, err := core.ParseListQueryOptions(c.Request.URL.Query(), h.Cfg.REST.PageSize, nil, nil)
	if err != nil {
		_ = c.Error(apierror.NotFound("Invalid page.").Wrap(err))
		return
	}

	apps, count, err := h.Store.ListApplicationsByApplicant(c.Request.Context(), user.ID, opts.PageSize, opts.Offset())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if core.PageOutOfRange(opts, count) {
		_ = c.Error(apierror.NotFound("Invalid page."))
		return
	}
	c.JSON(http.StatusOK, core.NewPage(requestURL(c), opts, count, apps))
}

// UpdateStatus moves an application through the hiring workflow. Only the
// applicant may withdraw; every other transition belongs to the job poster
// or staff.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	next := domain.ApplicationStatus(req.Status)
	if !next.Valid() {
		_ = c.Error(apierror.Validation(apierror.FieldErrors{"status": {`"` + req.Status + `" is not a valid choice.`}}))
		return
	}

	app, err := h.Store.GetApplication(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	job, err := h.Store.GetJob(ctx, app.JobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	isApplicant := app.ApplicantID == user.ID
	isEmployer := user.IsStaff || job.PostedBy == user.ID
	switch {
	case !isApplicant && !isEmployer:
		_ = c.Error(apierror.NotFound())
		return
	case next == domain.StatusWithdrawn && !isApplicant:
		_ = c.Error(apierror.PermissionDenied("Only the applicant may withdraw an application."))
		return
	case next != domain.StatusWithdrawn && !isEmployer:
		_ = c.Error(apierror.PermissionDenied("Only the job poster may change the status of an application."))
		return
	}

	from := app.Status
	if err := app.Transition(next); err != nil {
		_ = c.Error(translateDomainError(err))
		return
	}
	app.UpdatedAt, err = h.Store.UpdateApplicationStatus(ctx, app.ID, from, next)
	if err != nil {
		_ = c.Error(translateDomainError(err))
		return
	}

	customLog.Infof("Handler: Application %d moved from %s to %s by user %d", app.ID, from, next, user.ID)
	if !isApplicant {
		if applicant, err := h.Store.FindUserByID(ctx, app.ApplicantID); err == nil {
			mail.SendLogged(ctx, h.Mailer, mail.StatusChanged(applicant, app))
		} else {
			customLog.Warnf("Handler: Could not notify applicant %d: %v", app.ApplicantID, err)
		}
	}
	c.JSON(http.StatusOK, app)
}
