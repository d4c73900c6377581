package services

import (
	"sort"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
)

// HistoryService turns earliest-activity tables into cumulative daily
// series. Every series is dense (exactly one point per calendar day) and
// non-decreasing, which is what the dashboard's line charts expect.
type HistoryService struct {
	dedupService *DedupService
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(dedupService *DedupService) *HistoryService {
	return &HistoryService{dedupService: dedupService}
}

// BuildCumulative walks calendar days from start to end inclusive and emits
// the running count of identities whose earliest date is on or before each
// day. Output is deterministic for identical input.
func (s *HistoryService) BuildCumulative(firstDates map[string]time.Time, start, end time.Time) []models.DailyCount {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if end.Before(start) {
		return []models.DailyCount{}
	}

	// Count how many identities first appeared on each day. Dates before the
	// range cannot occur here for contributors (filtered upstream), but star
	// series may supply them; fold those into the first day so the running
	// total stays correct.
	perDay := make(map[time.Time]int)
	for _, day := range firstDates {
		day = truncateToDay(day)
		if day.Before(start) {
			day = start
		}
		perDay[day]++
	}

	series := make([]models.DailyCount, 0, int(end.Sub(start).Hours()/24)+1)
	cumulative := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		cumulative += perDay[day]
		series = append(series, models.DailyCount{Date: day, Count: cumulative})
	}

	return series
}

// BuildContributorHistory produces the three contributor series from the
// configured start date through end
func (s *HistoryService) BuildContributorHistory(events []*models.ContributionEvent, startDate, end time.Time) *models.ContributorHistory {
	dates := s.dedupService.EarliestContributions(events, truncateToDay(startDate))

	return &models.ContributorHistory{
		Total:     models.ContributorPoints(s.BuildCumulative(dates.Total, startDate, end)),
		Code:      models.ContributorPoints(s.BuildCumulative(dates.Code, startDate, end)),
		Community: models.ContributorPoints(s.BuildCumulative(dates.Community, startDate, end)),
	}
}

// BuildStarHistory produces one raw series per configured repository plus the
// total series. Only the total series deduplicates stargazers across
// repositories; a user who starred three repositories counts three times in
// the per-repository series but once, at their earliest star, in the total.
// Repositories with no stars keep their key with an empty series.
func (s *HistoryService) BuildStarHistory(starsByRepo map[string][]*models.StarEvent, repositories []string, end time.Time) models.StarHistory {
	history := make(models.StarHistory, len(repositories)+1)

	var allStars []*models.StarEvent
	for _, repo := range repositories {
		stars := starsByRepo[repo]
		allStars = append(allStars, stars...)

		perRepo := s.dedupService.EarliestStars(stars)
		history[models.RepoStarHistoryKey(repo)] = models.StarPoints(s.buildStarSeries(perRepo, end))
	}

	total := s.dedupService.EarliestStars(allStars)
	history[models.StarHistoryTotalKey] = models.StarPoints(s.buildStarSeries(total, end))

	return history
}

// buildStarSeries anchors a cumulative series at the earliest star day of
// the record set, since stars have no fixed start-date boundary
func (s *HistoryService) buildStarSeries(firstDates map[string]time.Time, end time.Time) []models.DailyCount {
	if len(firstDates) == 0 {
		return []models.DailyCount{}
	}

	days := make([]time.Time, 0, len(firstDates))
	for _, day := range firstDates {
		days = append(days, truncateToDay(day))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return s.BuildCumulative(firstDates, days[0], end)
}

// truncateToDay drops the time-of-day portion and pins the date to UTC
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
