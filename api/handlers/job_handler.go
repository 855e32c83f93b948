// api/handlers/job_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/api/middleware"
	"github.com/Annany2002/jobboard-backend/api/models"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/core"
	"github.com/Annany2002/jobboard-backend/internal/domain"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

// JobHandler serves job postings.
type JobHandler struct {
	Store *storage.Store
	Cfg   *config.Config
}

func NewJobHandler(store *storage.Store, cfg *config.Config) *JobHandler {
	return &JobHandler{Store: store, Cfg: cfg}
}

// ListJobs returns a page of active jobs. Supports ?search=, ?ordering= and
// exact filters on company, location, employment_type and posted_by.
func (h *JobHandler) ListJobs(c *gin.Context) {
	opts, err := core.ParseListQueryOptions(c.Request.URL.Query(), h.Cfg.REST.PageSize, storage.JobOrderingFields, storage.JobFilterFields)
	if err != nil {
		_ = c.Error(apierror.NotFound("Invalid page.").Wrap(err))
		return
	}

	jobs, count, err := h.Store.ListJobs(c.Request.Context(), opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilterValue) {
			err = apierror.BadRequest(err.Error()).Wrap(err)
		}
		_ = c.Error(err)
		return
	}
	if core.PageOutOfRange(opts, count) {
		_ = c.Error(apierror.NotFound("Invalid page."))
		return
	}

	customLog.Debugf("Handler: Listed %d of %d jobs", len(jobs), count)
	c.JSON(http.StatusOK, core.NewPage(requestURL(c), opts, count, jobs))
}

// CreateJob posts a job owned by the current user.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req models.CreateJobRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	job := &domain.Job{
		Title:          req.Title,
		Company:        req.Company,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    req.Description,
		PostedBy:       middleware.CurrentUser(c).ID,
	}
	if err := h.Store.CreateJob(c.Request.Context(), job); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Infof("Handler: User %d posted job %d", job.PostedBy, job.ID)
	c.JSON(http.StatusCreated, job)
}

// GetJob returns one active job.
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	job, err := h.Store.GetJob(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}
