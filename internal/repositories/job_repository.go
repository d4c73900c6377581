package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO jobs (id, job_type, repository, status, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID, job.JobType, job.Repository, job.Status, job.ErrorMessage,
		job.StartedAt, job.CompletedAt, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

// Update updates a job's mutable fields
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE jobs SET
			status = ?, error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status, job.ErrorMessage, job.StartedAt, job.CompletedAt, time.Now(), job.ID,
	)
	return err
}

// GetNextPendingJob claims the oldest pending job of the given type and marks
// it in-progress so no other worker picks it up
func (r *JobRepository) GetNextPendingJob(jobType models.JobType) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.scanNextPending(jobType)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	job.MarkStarted()
	query := `UPDATE jobs SET status = ?, started_at = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, job.Status, job.StartedAt, job.UpdatedAt, job.ID); err != nil {
		return nil, err
	}

	return job, nil
}

// GetNextPendingAggregateJob claims a pending aggregate job, but only when no
// fetch job is still pending or running. Aggregation must see a complete
// store snapshot.
func (r *JobRepository) GetNextPendingAggregateJob() (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var blocking int
	countQuery := `SELECT COUNT(*) FROM jobs WHERE job_type = ? AND status IN (?, ?)`
	err := r.db.QueryRow(countQuery, models.JobTypeFetch, models.JobStatusPending, models.JobStatusInProgress).Scan(&blocking)
	if err != nil {
		return nil, err
	}
	if blocking > 0 {
		return nil, nil
	}

	job, err := r.scanNextPending(models.JobTypeAggregate)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	job.MarkStarted()
	query := `UPDATE jobs SET status = ?, started_at = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, job.Status, job.StartedAt, job.UpdatedAt, job.ID); err != nil {
		return nil, err
	}

	return job, nil
}

// HasPendingJob reports whether a pending or running job of the type exists
func (r *JobRepository) HasPendingJob(jobType models.JobType) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	query := `SELECT COUNT(*) FROM jobs WHERE job_type = ? AND status IN (?, ?)`
	err := r.db.QueryRow(query, jobType, models.JobStatusPending, models.JobStatusInProgress).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *JobRepository) scanNextPending(jobType models.JobType) (*models.Job, error) {
	query := `
		SELECT id, job_type, repository, status, error_message, started_at, completed_at, created_at, updated_at
		FROM jobs
		WHERE job_type = ? AND status = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	job := &models.Job{}
	err := r.db.QueryRow(query, jobType, models.JobStatusPending).Scan(
		&job.ID, &job.JobType, &job.Repository, &job.Status, &job.ErrorMessage,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return job, nil
}
