package services

import (
	"testing"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedRepo(name string, stars, forks int, archived bool, pushed time.Time) *models.TrackedRepository {
	repo := models.NewTrackedRepository(name, "acme/"+name)
	repo.Stars = stars
	repo.Forks = forks
	repo.Archived = archived
	if !pushed.IsZero() {
		repo.PushedAt = &pushed
	}
	return repo
}

func TestSelectRepositories(t *testing.T) {
	now := day(2024, 6, 1)

	t.Run("excludes archived and stale repositories", func(t *testing.T) {
		repos := []*models.TrackedRepository{
			trackedRepo("active", 10, 0, false, day(2024, 5, 1)),
			trackedRepo("archived", 500, 100, true, day(2024, 5, 1)),
			trackedRepo("stale", 500, 100, false, day(2021, 1, 1)),
			trackedRepo("never-pushed", 500, 100, false, time.Time{}),
		}

		SelectRepositories(repos, now, 25)

		assert.True(t, repos[0].IsTracked)
		assert.False(t, repos[1].IsTracked)
		assert.False(t, repos[2].IsTracked)
		assert.False(t, repos[3].IsTracked)
	})

	t.Run("keeps the top repositories by stars plus forks", func(t *testing.T) {
		repos := []*models.TrackedRepository{
			trackedRepo("small", 1, 0, false, day(2024, 5, 1)),
			trackedRepo("medium", 5, 2, false, day(2024, 5, 1)),
			trackedRepo("large", 50, 10, false, day(2024, 5, 1)),
		}

		SelectRepositories(repos, now, 2)

		assert.False(t, repos[0].IsTracked)
		assert.True(t, repos[1].IsTracked)
		assert.True(t, repos[2].IsTracked)
	})

	t.Run("equal scores break by name for a stable selection", func(t *testing.T) {
		repos := []*models.TrackedRepository{
			trackedRepo("zeta", 5, 0, false, day(2024, 5, 1)),
			trackedRepo("alpha", 5, 0, false, day(2024, 5, 1)),
		}

		SelectRepositories(repos, now, 1)

		assert.False(t, repos[0].IsTracked)
		assert.True(t, repos[1].IsTracked, "alpha sorts first on the tie")
	})

	t.Run("reselection clears previously tracked repositories", func(t *testing.T) {
		repo := trackedRepo("was-tracked", 100, 0, true, day(2024, 5, 1))
		repo.IsTracked = true

		SelectRepositories([]*models.TrackedRepository{repo}, now, 25)

		assert.False(t, repo.IsTracked)
	})
}

func TestNumberFromURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		number int
		ok     bool
	}{
		{"issue url", "https://api.github.com/repos/acme/widgets/issues/42", 42, true},
		{"pull url", "https://api.github.com/repos/acme/widgets/pulls/7", 7, true},
		{"trailing slash", "https://api.github.com/repos/acme/widgets/issues/", 0, false},
		{"not a number", "https://api.github.com/repos/acme/widgets/issues/abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number, ok := numberFromURL(tt.url)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.number, number)
		})
	}
}
