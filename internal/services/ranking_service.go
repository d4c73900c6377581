package services

import (
	"sort"
	"strings"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// RankingService computes the monthly and yearly leaderboards: merged PRs
// (code), posts and comments (community), reviews and PR comments (review),
// plus the composite MVP ranking. The denylist and list size are supplied at
// construction so callers control them.
type RankingService struct {
	denylist map[string]struct{}
	limit    int
}

// NewRankingService creates a new RankingService
func NewRankingService(denylist []string, limit int) *RankingService {
	excluded := make(map[string]struct{}, len(denylist))
	for _, login := range denylist {
		excluded[login] = struct{}{}
	}
	return &RankingService{denylist: excluded, limit: limit}
}

// periodCounts maps period key -> author -> count for one category
type periodCounts map[string]map[string]int

// eventKey identifies an event for duplicate suppression. Two records that
// agree on every field are the same upstream event fetched twice.
type eventKey struct {
	repository    string
	kind          models.EventKind
	author        string
	day           time.Time
	onPullRequest bool
	selfAuthored  bool
	githubID      int64
}

// Calculate buckets events by calendar month and year and produces the full
// rankings document. Monthly and yearly rankings are independent
// computations over raw counts; a December rank never feeds the annual one.
func (s *RankingService) Calculate(events []*models.ContributionEvent, startDate, now time.Time) *models.RankingsDocument {
	code := make(periodCounts)
	community := make(periodCounts)
	review := make(periodCounts)

	seen := make(map[eventKey]struct{}, len(events))
	startDate = truncateToDay(startDate)

	for _, event := range events {
		if err := event.Validate(); err != nil {
			logger.WithError(err).WithField("repository", event.Repository).
				Warnf("skipping malformed contribution event")
			continue
		}
		if s.isExcluded(event.Author) {
			continue
		}

		day := event.Day()
		if day.Before(startDate) {
			continue
		}

		key := eventKey{
			repository:    event.Repository,
			kind:          event.Kind,
			author:        event.Author,
			day:           day,
			onPullRequest: event.OnPullRequest,
			selfAuthored:  event.SelfAuthored,
			githubID:      event.GithubID,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		month := day.Format("2006-01")

		switch event.Kind {
		case models.KindPullRequestMerged:
			addCount(code, month, event.Author)
		case models.KindIssueCreated, models.KindDiscussionCreated:
			addCount(community, month, event.Author)
		case models.KindCommentCreated:
			if event.OnPullRequest {
				// PR conversation comments count toward reviewing,
				// except comments on the author's own PR
				if !event.SelfAuthored {
					addCount(review, month, event.Author)
				}
			} else {
				addCount(community, month, event.Author)
			}
		case models.KindReviewCreated:
			if !event.SelfAuthored {
				addCount(review, month, event.Author)
			}
		}
	}

	doc := &models.RankingsDocument{
		LastUpdated: now.UTC().Format(time.RFC3339),
		Monthly:     make(map[string]*models.PeriodRankings),
		Yearly:      make(map[string]*models.PeriodRankings),
	}

	months := collectPeriods(code, community, review)
	years := make(map[string]struct{})

	for _, month := range months {
		doc.Monthly[month] = s.rankPeriod(
			code[month], community[month], review[month],
		)
		years[month[:4]] = struct{}{}
	}

	for year := range years {
		doc.Yearly[year] = s.rankPeriod(
			sumYear(code, year), sumYear(community, year), sumYear(review, year),
		)
	}

	return doc
}

// rankPeriod builds the four leaderboards of one period bucket
func (s *RankingService) rankPeriod(code, community, review map[string]int) *models.PeriodRankings {
	codeRanking := s.rankCategory(code)
	communityRanking := s.rankCategory(community)
	reviewRanking := s.rankCategory(review)

	return &models.PeriodRankings{
		Code:      codeRanking,
		Community: communityRanking,
		Review:    reviewRanking,
		MVP:       s.rankMVP(codeRanking, communityRanking, reviewRanking),
	}
}

// rankCategory orders authors by count descending, then author ascending to
// keep equal counts deterministic. Rank 1 is the highest count.
func (s *RankingService) rankCategory(counts map[string]int) []models.RankingEntry {
	entries := make([]models.RankingEntry, 0, len(counts))
	for author, count := range counts {
		if count > 0 {
			entries = append(entries, models.RankingEntry{Author: author, Count: count})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Author < entries[j].Author
	})

	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// rankMVP combines the three category rankings. Only authors present in all
// three are eligible. The score is the sum of the three ranks (lower is
// better); ties break by total raw count (higher wins), then author.
func (s *RankingService) rankMVP(code, community, review []models.RankingEntry) []models.MVPEntry {
	codeByAuthor := indexRanking(code)
	communityByAuthor := indexRanking(community)
	reviewByAuthor := indexRanking(review)

	entries := make([]models.MVPEntry, 0)
	for author, codeEntry := range codeByAuthor {
		communityEntry, inCommunity := communityByAuthor[author]
		reviewEntry, inReview := reviewByAuthor[author]
		if !inCommunity || !inReview {
			continue
		}

		entries = append(entries, models.MVPEntry{
			Author: author,
			Score:  codeEntry.Rank + communityEntry.Rank + reviewEntry.Rank,
			Count:  codeEntry.Count + communityEntry.Count + reviewEntry.Count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Author < entries[j].Author
	})

	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// isExcluded reports whether the author is denylisted or a bot account
func (s *RankingService) isExcluded(author string) bool {
	if _, ok := s.denylist[author]; ok {
		return true
	}
	return strings.HasSuffix(author, "[bot]")
}

func addCount(counts periodCounts, period, author string) {
	if counts[period] == nil {
		counts[period] = make(map[string]int)
	}
	counts[period][author]++
}

// collectPeriods returns the sorted union of period keys across categories
func collectPeriods(all ...periodCounts) []string {
	set := make(map[string]struct{})
	for _, counts := range all {
		for period := range counts {
			set[period] = struct{}{}
		}
	}

	periods := make([]string, 0, len(set))
	for period := range set {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	return periods
}

// sumYear aggregates a category's monthly counts into a yearly count table
func sumYear(counts periodCounts, year string) map[string]int {
	totals := make(map[string]int)
	for month, authors := range counts {
		if !strings.HasPrefix(month, year) {
			continue
		}
		for author, count := range authors {
			totals[author] += count
		}
	}
	return totals
}

func indexRanking(entries []models.RankingEntry) map[string]models.RankingEntry {
	byAuthor := make(map[string]models.RankingEntry, len(entries))
	for _, entry := range entries {
		byAuthor[entry.Author] = entry
	}
	return byAuthor
}
