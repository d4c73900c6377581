package repositories

import (
	"database/sql"
	"sync"

	"github.com/orgpulse/orgpulse/internal/models"
)

// StarRepository handles database operations for star events
type StarRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStarRepository creates a new StarRepository
func NewStarRepository(db *sql.DB) *StarRepository {
	return &StarRepository{db: db}
}

// Upsert inserts a star event. A login can star a repository only once, so a
// re-fetch of the same star keeps the original timestamp.
func (r *StarRepository) Upsert(star *models.StarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO star_events (id, repository, login, starred_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (repository, login) DO UPDATE SET
			starred_at = excluded.starred_at
	`

	_, err := r.db.Exec(query, star.ID, star.Repository, star.Login, star.StarredAt, star.CreatedAt)
	return err
}

// GetByRepository retrieves all star events for a repository
func (r *StarRepository) GetByRepository(repository string) ([]*models.StarEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, repository, login, starred_at, created_at
		FROM star_events
		WHERE repository = ?
		ORDER BY starred_at ASC
	`

	return r.queryStars(query, repository)
}

// GetAll retrieves all star events across every repository
func (r *StarRepository) GetAll() ([]*models.StarEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, repository, login, starred_at, created_at
		FROM star_events
		ORDER BY starred_at ASC
	`

	return r.queryStars(query)
}

// DeleteByRepository removes all star events for a repository
func (r *StarRepository) DeleteByRepository(repository string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM star_events WHERE repository = ?`, repository)
	return err
}

func (r *StarRepository) queryStars(query string, args ...interface{}) ([]*models.StarEvent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stars []*models.StarEvent
	for rows.Next() {
		var star models.StarEvent
		err := rows.Scan(&star.ID, &star.Repository, &star.Login, &star.StarredAt, &star.CreatedAt)
		if err != nil {
			return nil, err
		}
		stars = append(stars, &star)
	}

	return stars, rows.Err()
}
