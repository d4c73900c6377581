package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of activity a contribution event records
type EventKind string

const (
	KindPullRequestCreated EventKind = "pull_request_created"
	KindPullRequestMerged  EventKind = "pull_request_merged"
	KindIssueCreated       EventKind = "issue_created"
	KindDiscussionCreated  EventKind = "discussion_created"
	KindCommentCreated     EventKind = "comment_created"
	KindReviewCreated      EventKind = "review_created"
)

// ContributionEvent represents a single raw activity record fetched from
// GitHub: a PR, issue or discussion being opened, a PR being merged, a
// comment, or a review. Events are immutable once fetched.
type ContributionEvent struct {
	ID         string    `json:"id" db:"id"`
	Repository string    `json:"repository" db:"repository"`
	Kind       EventKind `json:"kind" db:"kind"`
	Author     string    `json:"author" db:"author"`
	EventTime  time.Time `json:"event_time" db:"event_time"`
	// Merged is set on pull_request_created events whose PR was merged
	Merged bool `json:"merged" db:"merged"`
	// OnPullRequest distinguishes PR comments from issue/discussion comments
	OnPullRequest bool `json:"on_pull_request" db:"on_pull_request"`
	// SelfAuthored marks reviews/comments made on the author's own PR
	SelfAuthored bool `json:"self_authored" db:"self_authored"`
	// GithubID is the upstream numeric identifier used for storage dedup
	GithubID  int64     `json:"github_id" db:"github_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewContributionEvent creates a new ContributionEvent with a generated UUID
func NewContributionEvent(repository string, kind EventKind, author string, eventTime time.Time) *ContributionEvent {
	now := time.Now()
	return &ContributionEvent{
		ID:         uuid.New().String(),
		Repository: repository,
		Kind:       kind,
		Author:     author,
		EventTime:  eventTime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks that the event carries the fields the pipeline depends on.
// Records failing validation are skipped with a warning, never fatal.
func (e *ContributionEvent) Validate() error {
	if e.Author == "" {
		return errors.New("author is required")
	}
	if e.EventTime.IsZero() {
		return errors.New("event time is required")
	}
	switch e.Kind {
	case KindPullRequestCreated, KindPullRequestMerged, KindIssueCreated,
		KindDiscussionCreated, KindCommentCreated, KindReviewCreated:
		return nil
	default:
		return errors.New("unknown event kind")
	}
}

// Day returns the event timestamp truncated to date granularity in UTC
func (e *ContributionEvent) Day() time.Time {
	return time.Date(e.EventTime.Year(), e.EventTime.Month(), e.EventTime.Day(), 0, 0, 0, 0, time.UTC)
}
