package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
)

// EventRepository handles database operations for contribution events
type EventRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Upsert inserts an event, replacing any previously fetched copy of the same
// upstream record so re-fetches never double count
func (r *EventRepository) Upsert(event *models.ContributionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO contribution_events (
			id, repository, kind, author, event_time, merged,
			on_pull_request, self_authored, github_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (repository, kind, github_id) DO UPDATE SET
			author = excluded.author,
			event_time = excluded.event_time,
			merged = excluded.merged,
			on_pull_request = excluded.on_pull_request,
			self_authored = excluded.self_authored,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		event.ID, event.Repository, event.Kind, event.Author, event.EventTime,
		event.Merged, event.OnPullRequest, event.SelfAuthored, event.GithubID,
		event.CreatedAt, time.Now(),
	)

	return err
}

// GetByRepository retrieves all events for a repository
func (r *EventRepository) GetByRepository(repository string) ([]*models.ContributionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, repository, kind, author, event_time, merged,
		       on_pull_request, self_authored, github_id, created_at, updated_at
		FROM contribution_events
		WHERE repository = ?
		ORDER BY event_time ASC
	`

	return r.queryEvents(query, repository)
}

// GetAll retrieves all events across every repository
func (r *EventRepository) GetAll() ([]*models.ContributionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, repository, kind, author, event_time, merged,
		       on_pull_request, self_authored, github_id, created_at, updated_at
		FROM contribution_events
		ORDER BY event_time ASC
	`

	return r.queryEvents(query)
}

// DeleteByRepository removes all events for a repository
func (r *EventRepository) DeleteByRepository(repository string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM contribution_events WHERE repository = ?`, repository)
	return err
}

func (r *EventRepository) queryEvents(query string, args ...interface{}) ([]*models.ContributionEvent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ContributionEvent
	for rows.Next() {
		var event models.ContributionEvent
		err := rows.Scan(
			&event.ID, &event.Repository, &event.Kind, &event.Author, &event.EventTime,
			&event.Merged, &event.OnPullRequest, &event.SelfAuthored, &event.GithubID,
			&event.CreatedAt, &event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
