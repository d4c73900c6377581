package services

import (
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// ContributionDates holds, per contributor scope, the earliest qualifying
// activity day of each identity across all repositories. Identities with no
// qualifying activity are absent.
type ContributionDates struct {
	Code      map[string]time.Time
	Community map[string]time.Time
	Total     map[string]time.Time
	// Warnings counts malformed events that were skipped
	Warnings int
}

// DedupService reduces raw per-repository event collections to one earliest
// activity date per identity. It is a pure transform over the supplied
// collections: feeding the same events twice yields the same result.
type DedupService struct{}

// NewDedupService creates a new DedupService
func NewDedupService() *DedupService {
	return &DedupService{}
}

// EarliestContributions scans all events and retains, per identity, the
// minimum event day for the code scope (opened pull requests), the community
// scope (opened issues/discussions and comments), and their union. Events
// before startDate are excluded entirely, not clipped.
func (s *DedupService) EarliestContributions(events []*models.ContributionEvent, startDate time.Time) *ContributionDates {
	dates := &ContributionDates{
		Code:      make(map[string]time.Time),
		Community: make(map[string]time.Time),
		Total:     make(map[string]time.Time),
	}

	for _, event := range events {
		if err := event.Validate(); err != nil {
			dates.Warnings++
			logger.WithError(err).WithField("repository", event.Repository).
				Warnf("skipping malformed contribution event")
			continue
		}

		day := event.Day()
		if day.Before(startDate) {
			continue
		}

		switch event.Kind {
		case models.KindPullRequestCreated:
			keepEarliest(dates.Code, event.Author, day)
		case models.KindIssueCreated, models.KindDiscussionCreated, models.KindCommentCreated:
			keepEarliest(dates.Community, event.Author, day)
		}
	}

	// Total scope is the union: the minimum across both scopes per identity
	for author, day := range dates.Code {
		keepEarliest(dates.Total, author, day)
	}
	for author, day := range dates.Community {
		keepEarliest(dates.Total, author, day)
	}

	return dates
}

// EarliestStars reduces star events to the earliest star day per login
// across all supplied repositories. Stars carry no start-date boundary.
func (s *DedupService) EarliestStars(stars []*models.StarEvent) map[string]time.Time {
	earliest := make(map[string]time.Time)

	for _, star := range stars {
		if err := star.Validate(); err != nil {
			logger.WithError(err).WithField("repository", star.Repository).
				Warnf("skipping malformed star event")
			continue
		}
		keepEarliest(earliest, star.Login, star.Day())
	}

	return earliest
}

// keepEarliest records day for key unless an earlier day is already known
func keepEarliest(dates map[string]time.Time, key string, day time.Time) {
	if existing, ok := dates[key]; !ok || day.Before(existing) {
		dates[key] = day
	}
}
