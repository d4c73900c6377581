package services

import (
	"testing"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedPR(repo, author string, t time.Time) *models.ContributionEvent {
	e := event(repo, models.KindPullRequestMerged, author, t)
	e.Merged = true
	return e
}

func review(repo, author string, t time.Time, self bool) *models.ContributionEvent {
	e := event(repo, models.KindReviewCreated, author, t)
	e.OnPullRequest = true
	e.SelfAuthored = self
	return e
}

func prComment(repo, author string, t time.Time, self bool) *models.ContributionEvent {
	e := event(repo, models.KindCommentCreated, author, t)
	e.OnPullRequest = true
	e.SelfAuthored = self
	return e
}

func newTestRankingService() *RankingService {
	return NewRankingService([]string{"ci-bot"}, 50)
}

func TestCalculateCategories(t *testing.T) {
	start := day(2022, 1, 1)

	t.Run("code counts merged PRs only", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 2, 3)),
			mergedPR("repoA", "alice", day(2022, 2, 10)),
			event("repoA", models.KindPullRequestCreated, "bob", day(2022, 2, 5)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.NotNil(t, period)
		require.Len(t, period.Code, 1)
		assert.Equal(t, models.RankingEntry{Rank: 1, Author: "alice", Count: 2}, period.Code[0])
	})

	t.Run("community counts posts and issue comments", func(t *testing.T) {
		events := []*models.ContributionEvent{
			event("repoA", models.KindIssueCreated, "bob", day(2022, 2, 1)),
			event("repoA", models.KindDiscussionCreated, "bob", day(2022, 2, 2)),
			event("repoA", models.KindCommentCreated, "bob", day(2022, 2, 3)),
			prComment("repoA", "bob", day(2022, 2, 4), false),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.Len(t, period.Community, 1)
		assert.Equal(t, 3, period.Community[0].Count, "PR comment belongs to review, not community")
		require.Len(t, period.Review, 1)
		assert.Equal(t, 1, period.Review[0].Count)
	})

	t.Run("self reviews and self PR comments never count", func(t *testing.T) {
		events := []*models.ContributionEvent{
			review("repoA", "alice", day(2022, 2, 1), true),
			prComment("repoA", "alice", day(2022, 2, 2), true),
			review("repoA", "bob", day(2022, 2, 3), false),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.Len(t, period.Review, 1)
		assert.Equal(t, "bob", period.Review[0].Author)
	})

	t.Run("denylisted and bot identities are excluded", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "ci-bot", day(2022, 2, 1)),
			mergedPR("repoA", "dependabot[bot]", day(2022, 2, 2)),
			mergedPR("repoA", "alice", day(2022, 2, 3)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.Len(t, period.Code, 1)
		assert.Equal(t, "alice", period.Code[0].Author)
	})

	t.Run("exact duplicate events count once", func(t *testing.T) {
		duplicate := mergedPR("repoA", "alice", day(2022, 2, 3))
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 2, 3)),
			duplicate,
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		assert.Equal(t, 1, doc.Monthly["2022-02"].Code[0].Count)
	})

	t.Run("events before the start date are ignored", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2021, 11, 3)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		assert.Empty(t, doc.Monthly)
		assert.Empty(t, doc.Yearly)
	})

	t.Run("equal counts order by author for reproducible ranks", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "zoe", day(2022, 2, 1)),
			mergedPR("repoB", "adam", day(2022, 2, 2)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.Len(t, period.Code, 2)
		assert.Equal(t, "adam", period.Code[0].Author)
		assert.Equal(t, 1, period.Code[0].Rank)
		assert.Equal(t, "zoe", period.Code[1].Author)
		assert.Equal(t, 2, period.Code[1].Rank)
	})
}

func TestCalculateMVP(t *testing.T) {
	start := day(2022, 1, 1)

	// February: code {alice:3, bob:1}, community {alice:2, bob:4},
	// review {alice:1, bob:2}.
	februaryEvents := func() []*models.ContributionEvent {
		var events []*models.ContributionEvent
		for i := 0; i < 3; i++ {
			events = append(events, mergedPR("repoA", "alice", day(2022, 2, 1+i)))
		}
		events = append(events, mergedPR("repoA", "bob", day(2022, 2, 1)))
		for i := 0; i < 2; i++ {
			events = append(events, event("repoA", models.KindIssueCreated, "alice", day(2022, 2, 5+i)))
		}
		for i := 0; i < 4; i++ {
			events = append(events, event("repoA", models.KindIssueCreated, "bob", day(2022, 2, 5+i)))
		}
		events = append(events, review("repoA", "alice", day(2022, 2, 10), false))
		events = append(events, review("repoA", "bob", day(2022, 2, 10), false))
		events = append(events, review("repoB", "bob", day(2022, 2, 11), false))
		return events
	}

	t.Run("score is the sum of category ranks, lower wins", func(t *testing.T) {
		doc := newTestRankingService().Calculate(februaryEvents(), start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.NotNil(t, period)

		// Code: alice=1, bob=2. Community: bob=1, alice=2. Review: bob=1, alice=2.
		require.Len(t, period.MVP, 2)
		assert.Equal(t, models.MVPEntry{Rank: 1, Author: "bob", Score: 4, Count: 7}, period.MVP[0])
		assert.Equal(t, models.MVPEntry{Rank: 2, Author: "alice", Score: 5, Count: 6}, period.MVP[1])
	})

	t.Run("identity missing from one category is ineligible", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 2, 1)),
			event("repoA", models.KindIssueCreated, "alice", day(2022, 2, 2)),
			// alice has no review activity
			mergedPR("repoA", "bob", day(2022, 2, 1)),
			event("repoA", models.KindIssueCreated, "bob", day(2022, 2, 2)),
			review("repoA", "bob", day(2022, 2, 3), false),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		require.Len(t, period.MVP, 1)
		assert.Equal(t, "bob", period.MVP[0].Author)
	})

	t.Run("score ties break by total raw count, then author", func(t *testing.T) {
		var events []*models.ContributionEvent
		// Code: alice 4, bob 2, carol 1 -> ranks 1, 2, 3
		for i := 0; i < 4; i++ {
			events = append(events, mergedPR("repoA", "alice", day(2022, 2, 1+i)))
		}
		events = append(events,
			mergedPR("repoA", "bob", day(2022, 2, 1)),
			mergedPR("repoA", "bob", day(2022, 2, 2)),
			mergedPR("repoA", "carol", day(2022, 2, 1)),
		)
		// Community: carol 3, alice 2, bob 1 -> ranks 1, 2, 3
		for i := 0; i < 3; i++ {
			events = append(events, event("repoA", models.KindIssueCreated, "carol", day(2022, 2, 10+i)))
		}
		events = append(events,
			event("repoA", models.KindIssueCreated, "alice", day(2022, 2, 10)),
			event("repoA", models.KindIssueCreated, "alice", day(2022, 2, 11)),
			event("repoA", models.KindIssueCreated, "bob", day(2022, 2, 10)),
		)
		// Review: bob 3, carol 2, alice 1 -> ranks 1, 2, 3
		for i := 0; i < 3; i++ {
			events = append(events, review("repoA", "bob", day(2022, 2, 20+i), false))
		}
		events = append(events,
			review("repoA", "carol", day(2022, 2, 20), false),
			review("repoA", "carol", day(2022, 2, 21), false),
			review("repoA", "alice", day(2022, 2, 20), false),
		)

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		// Every score is 1+2+3=6. Totals: alice 7, bob 6, carol 6.
		// Alice wins on count; bob beats carol on author.
		require.Len(t, period.MVP, 3)
		assert.Equal(t, models.MVPEntry{Rank: 1, Author: "alice", Score: 6, Count: 7}, period.MVP[0])
		assert.Equal(t, models.MVPEntry{Rank: 2, Author: "bob", Score: 6, Count: 6}, period.MVP[1])
		assert.Equal(t, models.MVPEntry{Rank: 3, Author: "carol", Score: 6, Count: 6}, period.MVP[2])
	})

	t.Run("empty MVP list when nobody qualifies", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 2, 1)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2022, 3, 1))

		period := doc.Monthly["2022-02"]
		assert.NotNil(t, period.MVP)
		assert.Empty(t, period.MVP)
	})
}

func TestCalculateYearly(t *testing.T) {
	start := day(2022, 1, 1)

	t.Run("yearly rankings aggregate raw monthly counts", func(t *testing.T) {
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 1, 10)),
			mergedPR("repoA", "alice", day(2022, 6, 10)),
			mergedPR("repoA", "bob", day(2022, 6, 11)),
			mergedPR("repoA", "bob", day(2022, 6, 12)),
			mergedPR("repoA", "bob", day(2022, 6, 13)),
		}

		doc := newTestRankingService().Calculate(events, start, day(2023, 1, 1))

		yearly := doc.Yearly["2022"]
		require.NotNil(t, yearly)
		require.Len(t, yearly.Code, 2)
		assert.Equal(t, models.RankingEntry{Rank: 1, Author: "bob", Count: 3}, yearly.Code[0])
		assert.Equal(t, models.RankingEntry{Rank: 2, Author: "alice", Count: 2}, yearly.Code[1])

		// Monthly ranks stay independent of the yearly computation
		assert.Equal(t, 1, doc.Monthly["2022-01"].Code[0].Rank)
		assert.Equal(t, "alice", doc.Monthly["2022-01"].Code[0].Author)
	})

	t.Run("ranking list respects the configured limit", func(t *testing.T) {
		service := NewRankingService(nil, 2)
		events := []*models.ContributionEvent{
			mergedPR("repoA", "alice", day(2022, 2, 1)),
			mergedPR("repoB", "bob", day(2022, 2, 1)),
			mergedPR("repoA", "carol", day(2022, 2, 1)),
		}

		doc := service.Calculate(events, start, day(2022, 3, 1))

		assert.Len(t, doc.Monthly["2022-02"].Code, 2)
	})

	t.Run("last_updated is an ISO-8601 timestamp", func(t *testing.T) {
		now := time.Date(2022, 3, 1, 12, 30, 0, 0, time.UTC)
		doc := newTestRankingService().Calculate(nil, start, now)

		assert.Equal(t, "2022-03-01T12:30:00Z", doc.LastUpdated)
		assert.NotNil(t, doc.Monthly)
		assert.NotNil(t, doc.Yearly)
	})
}
