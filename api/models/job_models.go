// api/models/job_models.go
package models

// CreateJobRequest defines the body for posting a job.
type CreateJobRequest struct {
	Title          string `json:"title" binding:"required,max=200"`
	Company        string `json:"company" binding:"required,max=200"`
	Location       string `json:"location" binding:"max=200"`
	EmploymentType string `json:"employment_type" binding:"required,oneof=full_time part_time contract internship"`
	Description    string `json:"description" binding:"max=10000"`
}

// ApplyRequest holds the non-file multipart fields of an application.
type ApplyRequest struct {
	CoverLetter string `form:"cover_letter" binding:"max=5000"`
}

// UpdateStatusRequest moves an application through the workflow.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
