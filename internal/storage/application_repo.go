// internal/storage/application_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Annany2002/jobboard-backend/internal/domain"
)

var (
	ErrApplicationNotFound = fmt.Errorf("application %w", domain.ErrNotFound)
	ErrAlreadyApplied      = errors.New("already applied to this job")
	ErrStatusConflict      = fmt.Errorf("%w: status was changed concurrently", domain.ErrApplicationWorkflow)
)

const applicationColumns = `id, job_id, applicant_id, cover_letter, resume_name, resume_type, resume_size, status, created_at, updated_at`

// CreateApplication stores app with status "submitted". An applicant can
// apply to a job only once.
func (s *Store) CreateApplication(ctx context.Context, app *domain.Application) error {
	now := time.Now().UTC()
	app.Status = domain.StatusSubmitted
	app.CreatedAt = now
	app.UpdatedAt = now
	app.ResumeSize = int64(len(app.ResumeData))

	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO applications (job_id, applicant_id, cover_letter, resume_name, resume_type, resume_size, resume_data, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.JobID, app.ApplicantID, app.CoverLetter, app.ResumeName, app.ResumeType, app.ResumeSize, app.ResumeData, app.Status, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyApplied
		}
		customLog.Warnf("Storage: Failed to insert application for job %d by user %d: %v", app.JobID, app.ApplicantID, err)
		return fmt.Errorf("database error creating application: %w", err)
	}
	app.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve application ID after creation: %w", err)
	}
	return nil
}

// GetApplication returns an application without its resume bytes.
func (s *Store) GetApplication(ctx context.Context, id int64) (*domain.Application, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)

	var app domain.Application
	if err := scanApplication(row, &app); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		customLog.Warnf("Storage: Error fetching application %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching application: %w", err)
	}
	return &app, nil
}

// ListApplicationsByApplicant returns one page of the applicant's
// applications, newest first, and their total count.
func (s *Store) ListApplicationsByApplicant(ctx context.Context, applicantID int64, limit, offset int) ([]domain.Application, int, error) {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE applicant_id = ?`, applicantID).Scan(&count); err != nil {
		customLog.Warnf("Storage: Failed to count applications for user %d: %v", applicantID, err)
		return nil, 0, fmt.Errorf("database error counting applications: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		applicantID, limit, offset)
	if err != nil {
		customLog.Warnf("Storage: Failed to list applications for user %d: %v", applicantID, err)
		return nil, 0, fmt.Errorf("database error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		var app domain.Application
		if err := scanApplication(rows, &app); err != nil {
			return nil, 0, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, count, nil
}

// UpdateApplicationStatus moves an application from one status to another.
// The update only applies while the stored status still equals from.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, from, to domain.ApplicationStatus) (time.Time, error) {
	updatedAt := time.Now().UTC()
	result, err := s.DB.ExecContext(ctx,
		`UPDATE applications SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, updatedAt, id, from)
	if err != nil {
		customLog.Warnf("Storage: Failed to update status of application %d: %v", id, err)
		return time.Time{}, fmt.Errorf("database error updating application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetApplication(ctx, id); err != nil {
			return time.Time{}, err
		}
		return time.Time{}, ErrStatusConflict
	}
	return updatedAt, nil
}

func scanApplication(row rowScanner, app *domain.Application) error {
	return row.Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.CoverLetter, &app.ResumeName,
		&app.ResumeType, &app.ResumeSize, &app.Status, &app.CreatedAt, &app.UpdatedAt)
}
