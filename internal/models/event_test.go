package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionEventValidate(t *testing.T) {
	valid := time.Date(2022, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *ContributionEvent
		wantErr string
	}{
		{
			name:  "valid event",
			event: NewContributionEvent("repoA", KindIssueCreated, "alice", valid),
		},
		{
			name:    "missing author",
			event:   NewContributionEvent("repoA", KindIssueCreated, "", valid),
			wantErr: "author is required",
		},
		{
			name:    "missing event time",
			event:   NewContributionEvent("repoA", KindIssueCreated, "alice", time.Time{}),
			wantErr: "event time is required",
		},
		{
			name:    "unknown kind",
			event:   NewContributionEvent("repoA", EventKind("push"), "alice", valid),
			wantErr: "unknown event kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestContributionEventDay(t *testing.T) {
	event := NewContributionEvent("repoA", KindCommentCreated, "bob",
		time.Date(2022, 3, 1, 23, 59, 59, 0, time.UTC))

	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), event.Day())
}

func TestStarEventValidate(t *testing.T) {
	t.Run("valid star", func(t *testing.T) {
		star := NewStarEvent("repoA", "xavier", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
		assert.NoError(t, star.Validate())
	})

	t.Run("missing login", func(t *testing.T) {
		star := NewStarEvent("repoA", "", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
		assert.Error(t, star.Validate())
	})

	t.Run("missing timestamp", func(t *testing.T) {
		star := NewStarEvent("repoA", "xavier", time.Time{})
		assert.Error(t, star.Validate())
	})
}

func TestTrackedRepositoryScore(t *testing.T) {
	repo := NewTrackedRepository("widgets", "acme/widgets")
	repo.Stars = 12
	repo.Forks = 3

	assert.Equal(t, 15, repo.Score())
}
