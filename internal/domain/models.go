// internal/domain/models.go
package domain

import "time"

// User is an account able to post jobs and apply to them.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}

// EmploymentType values accepted for job postings.
const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
)

// Job is a posting on the board.
type Job struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	PostedBy       int64     `json:"posted_by"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Application links an applicant to a job.
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job"`
	ApplicantID int64             `json:"applicant"`
	CoverLetter string            `json:"cover_letter"`
	ResumeName  string            `json:"resume_name"`
	ResumeType  string            `json:"resume_content_type"`
	ResumeSize  int64             `json:"resume_size"`
	ResumeData  []byte            `json:"-"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
