package models

import "time"

// DailyCount is one point of a cumulative daily series. The series is dense:
// one point per calendar day, counts never decrease.
type DailyCount struct {
	Date  time.Time
	Count int
}

// ContributorPoint is the JSON shape of one contributor history point
type ContributorPoint struct {
	Date              string `json:"date"`
	ContributorsCount int    `json:"contributors_count"`
}

// StarPoint is the JSON shape of one star history point
type StarPoint struct {
	Date      string `json:"date"`
	StarCount int    `json:"star_count"`
}

// ContributorHistory holds the three cumulative unique-contributor series
// consumed by the dashboard
type ContributorHistory struct {
	Total     []ContributorPoint `json:"total_contributors"`
	Code      []ContributorPoint `json:"code_contributors"`
	Community []ContributorPoint `json:"community_contributors"`
}

// StarHistory maps series keys ("total_stars_history" and
// "<repo>_stars_history") to cumulative star series. The total series counts
// each stargazer once at their earliest star across all repositories; the
// per-repository series count that repository's stars only.
type StarHistory map[string][]StarPoint

// StarHistoryTotalKey is the key of the cross-repository deduplicated series
const StarHistoryTotalKey = "total_stars_history"

// RepoStarHistoryKey returns the series key for a single repository
func RepoStarHistoryKey(repository string) string {
	return repository + "_stars_history"
}

// ContributorPoints converts an internal daily series to its JSON shape
func ContributorPoints(series []DailyCount) []ContributorPoint {
	points := make([]ContributorPoint, 0, len(series))
	for _, dc := range series {
		points = append(points, ContributorPoint{
			Date:              dc.Date.Format("2006-01-02"),
			ContributorsCount: dc.Count,
		})
	}
	return points
}

// StarPoints converts an internal daily series to its JSON shape
func StarPoints(series []DailyCount) []StarPoint {
	points := make([]StarPoint, 0, len(series))
	for _, dc := range series {
		points = append(points, StarPoint{
			Date:      dc.Date.Format("2006-01-02"),
			StarCount: dc.Count,
		})
	}
	return points
}
