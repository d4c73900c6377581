package models

// RankingCategory identifies one leaderboard category
type RankingCategory string

const (
	CategoryCode      RankingCategory = "code"
	CategoryCommunity RankingCategory = "community"
	CategoryReview    RankingCategory = "review"
)

// RankingEntry is one row of a single-category leaderboard.
// Rank 1 is the highest count.
type RankingEntry struct {
	Rank   int    `json:"rank"`
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// MVPEntry is one row of the composite leaderboard. Score is the sum of the
// author's ranks across the three categories, lower is better. Count is the
// sum of the raw category counts and breaks score ties.
type MVPEntry struct {
	Rank   int    `json:"rank"`
	Author string `json:"author"`
	Score  int    `json:"score"`
	Count  int    `json:"count"`
}

// PeriodRankings holds the four leaderboards of one period bucket
type PeriodRankings struct {
	Code      []RankingEntry `json:"code"`
	Community []RankingEntry `json:"community"`
	Review    []RankingEntry `json:"review"`
	MVP       []MVPEntry     `json:"mvp"`
}

// RankingsDocument is the full rankings artifact consumed by the dashboard.
// Monthly keys are YYYY-MM, yearly keys are YYYY.
type RankingsDocument struct {
	LastUpdated string                     `json:"last_updated"`
	Monthly     map[string]*PeriodRankings `json:"monthly"`
	Yearly      map[string]*PeriodRankings `json:"yearly"`
}
