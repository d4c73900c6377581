package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// StarEvent represents a user starring a repository. A user can star a given
// repository only once, but may appear across several repositories.
type StarEvent struct {
	ID         string    `json:"id" db:"id"`
	Repository string    `json:"repository" db:"repository"`
	Login      string    `json:"login" db:"login"`
	StarredAt  time.Time `json:"starred_at" db:"starred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewStarEvent creates a new StarEvent with a generated UUID
func NewStarEvent(repository, login string, starredAt time.Time) *StarEvent {
	return &StarEvent{
		ID:         uuid.New().String(),
		Repository: repository,
		Login:      login,
		StarredAt:  starredAt,
		CreatedAt:  time.Now(),
	}
}

// Validate checks that the star event carries a login and a timestamp
func (s *StarEvent) Validate() error {
	if s.Login == "" {
		return errors.New("login is required")
	}
	if s.StarredAt.IsZero() {
		return errors.New("starred at is required")
	}
	return nil
}

// Day returns the star timestamp truncated to date granularity in UTC
func (s *StarEvent) Day() time.Time {
	return time.Date(s.StarredAt.Year(), s.StarredAt.Month(), s.StarredAt.Day(), 0, 0, 0, 0, time.UTC)
}
