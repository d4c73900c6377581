package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackedRepository represents a repository of the tracked organization
type TrackedRepository struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	FullName  string     `json:"full_name" db:"full_name"`
	Stars     int        `json:"stars" db:"stars"`
	Forks     int        `json:"forks" db:"forks"`
	Archived  bool       `json:"archived" db:"archived"`
	IsTracked bool       `json:"is_tracked" db:"is_tracked"`
	PushedAt  *time.Time `json:"pushed_at" db:"pushed_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewTrackedRepository creates a new TrackedRepository with a generated UUID
func NewTrackedRepository(name, fullName string) *TrackedRepository {
	now := time.Now()
	return &TrackedRepository{
		ID:        uuid.New().String(),
		Name:      name,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Score is the composite popularity score used for repository selection
func (r *TrackedRepository) Score() int {
	return r.Stars + r.Forks
}
