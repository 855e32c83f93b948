// internal/storage/job_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/jobboard-backend/internal/core"
	"github.com/Annany2002/jobboard-backend/internal/domain"
)

var (
	ErrJobNotFound        = fmt.Errorf("job %w", domain.ErrNotFound)
	ErrInvalidFilterValue = errors.New("invalid value provided for filter")
)

// JobFilterFields are the exact-match filters accepted by ListJobs.
var JobFilterFields = []string{"company", "location", "employment_type", "posted_by"}

// JobOrderingFields are the columns ListJobs may sort by.
var JobOrderingFields = []string{"created_at", "title", "company"}

const jobColumns = `id, title, company, location, employment_type, description, posted_by, is_active, created_at`

// CreateJob inserts job and fills in its ID and creation time.
func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	job.CreatedAt = time.Now().UTC()
	job.IsActive = true

	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO jobs (title, company, location, employment_type, description, posted_by, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Title, job.Company, job.Location, job.EmploymentType, job.Description, job.PostedBy, job.IsActive, job.CreatedAt)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert job '%s' for user %d: %v", job.Title, job.PostedBy, err)
		return fmt.Errorf("database error creating job: %w", err)
	}
	job.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve job ID after creation: %w", err)
	}
	return nil
}

// GetJob returns an active job by ID.
func (s *Store) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ? AND is_active = 1`, id)

	var job domain.Job
	if err := scanJob(row, &job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		customLog.Warnf("Storage: Error fetching job %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching job: %w", err)
	}
	return &job, nil
}

// ListJobs returns one page of active jobs matching opts and the total
// number of matches.
func (s *Store) ListJobs(ctx context.Context, opts *core.ListQueryOptions) ([]domain.Job, int, error) {
	whereClauses := []string{"is_active = 1"}
	args := []any{}

	if opts.Search != "" {
		whereClauses = append(whereClauses, "(title LIKE ? ESCAPE '\\' OR company LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(opts.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	for _, key := range JobFilterFields {
		value, ok := opts.Filters[key]
		if !ok {
			continue
		}
		var converted any = value
		if key == "posted_by" {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: '%s' must be an integer", ErrInvalidFilterValue, key)
			}
			converted = id
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, converted)
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&count); err != nil {
		customLog.Warnf("Storage: Failed to count jobs: %v", err)
		return nil, 0, fmt.Errorf("database error counting jobs: %w", err)
	}

	orderBy := "created_at DESC, id DESC"
	if opts.OrderBy != "" && core.IsValidIdentifier(opts.OrderBy) {
		direction := "ASC"
		if opts.Descending {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s, id %s", opts.OrderBy, direction, direction)
	}

	selectSQL := `SELECT ` + jobColumns + ` FROM jobs` + where + ` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	customLog.Debugf("Storage: Executing list jobs SQL: %s | Args: %v", selectSQL, args)

	rows, err := s.DB.QueryContext(ctx, selectSQL, append(args, opts.PageSize, opts.Offset())...)
	if err != nil {
		customLog.Warnf("Storage: Failed to list jobs: %v", err)
		return nil, 0, fmt.Errorf("database error listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := scanJob(rows, &job); err != nil {
			return nil, 0, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner, job *domain.Job) error {
	return row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.EmploymentType,
		&job.Description, &job.PostedBy, &job.IsActive, &job.CreatedAt)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
