package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
)

// RepositoryRepository handles database operations for tracked repositories
type RepositoryRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewRepositoryRepository creates a new RepositoryRepository
func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

// Upsert inserts or refreshes a repository row keyed by name
func (r *RepositoryRepository) Upsert(repo *models.TrackedRepository) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO repositories (
			id, name, full_name, stars, forks, archived, is_tracked,
			pushed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			full_name = excluded.full_name,
			stars = excluded.stars,
			forks = excluded.forks,
			archived = excluded.archived,
			is_tracked = excluded.is_tracked,
			pushed_at = excluded.pushed_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		repo.ID, repo.Name, repo.FullName, repo.Stars, repo.Forks, repo.Archived,
		repo.IsTracked, repo.PushedAt, repo.CreatedAt, time.Now(),
	)

	return err
}

// GetTracked retrieves all tracked repositories ordered by name
func (r *RepositoryRepository) GetTracked() ([]*models.TrackedRepository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, name, full_name, stars, forks, archived, is_tracked, pushed_at, created_at, updated_at
		FROM repositories
		WHERE is_tracked = 1
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*models.TrackedRepository
	for rows.Next() {
		var repo models.TrackedRepository
		err := rows.Scan(
			&repo.ID, &repo.Name, &repo.FullName, &repo.Stars, &repo.Forks,
			&repo.Archived, &repo.IsTracked, &repo.PushedAt, &repo.CreatedAt, &repo.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		repos = append(repos, &repo)
	}

	return repos, rows.Err()
}

// GetByName retrieves a repository by name
func (r *RepositoryRepository) GetByName(name string) (*models.TrackedRepository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, name, full_name, stars, forks, archived, is_tracked, pushed_at, created_at, updated_at
		FROM repositories WHERE name = ?
	`

	var repo models.TrackedRepository
	err := r.db.QueryRow(query, name).Scan(
		&repo.ID, &repo.Name, &repo.FullName, &repo.Stars, &repo.Forks,
		&repo.Archived, &repo.IsTracked, &repo.PushedAt, &repo.CreatedAt, &repo.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &repo, nil
}

// UntrackAll clears the tracked flag before a fresh selection pass
func (r *RepositoryRepository) UntrackAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`UPDATE repositories SET is_tracked = 0, updated_at = ?`, time.Now())
	return err
}
