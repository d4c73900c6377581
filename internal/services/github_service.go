package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/pkg/logger"
	"golang.org/x/oauth2"
)

// GitHubService fetches raw activity records from the GitHub API. It owns
// pagination and rate-limit waiting; the aggregation services only ever see
// its output as plain event collections.
type GitHubService struct {
	client *github.Client
	org    string
}

// NewGitHubService creates a GitHub client for the organization, using the
// token when one is configured
func NewGitHubService(token, org string) *GitHubService {
	var client *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = github.NewClient(nil)
	}

	return &GitHubService{client: client, org: org}
}

// NewGitHubServiceWithClient creates a GitHubService around an existing
// client, used by tests
func NewGitHubServiceWithClient(client *github.Client, org string) *GitHubService {
	return &GitHubService{client: client, org: org}
}

// FetchOrganizationRepositories lists the organization's repositories and
// applies the tracking selection rules. All repositories are returned; the
// selected ones carry the tracked flag.
func (s *GitHubService) FetchOrganizationRepositories(ctx context.Context, limit int) ([]*models.TrackedRepository, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*models.TrackedRepository
	for {
		repos, resp, err := s.client.Repositories.ListByOrg(ctx, s.org, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list repositories for %s: %w", s.org, err)
		}

		for _, repo := range repos {
			tracked := models.NewTrackedRepository(repo.GetName(), repo.GetFullName())
			tracked.Stars = repo.GetStargazersCount()
			tracked.Forks = repo.GetForksCount()
			tracked.Archived = repo.GetArchived()
			if pushed := repo.GetPushedAt(); !pushed.IsZero() {
				t := pushed.Time
				tracked.PushedAt = &t
			}
			all = append(all, tracked)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	SelectRepositories(all, time.Now(), limit)
	return all, nil
}

// SelectRepositories marks the repositories worth tracking: not archived,
// pushed within the last two years, top N by stars+forks. Ties on the score
// break by name so the selection is stable between runs.
func SelectRepositories(repos []*models.TrackedRepository, now time.Time, limit int) {
	staleBefore := now.AddDate(-2, 0, 0)

	var candidates []*models.TrackedRepository
	for _, repo := range repos {
		repo.IsTracked = false
		if repo.Archived {
			continue
		}
		if repo.PushedAt == nil || repo.PushedAt.Before(staleBefore) {
			continue
		}
		candidates = append(candidates, repo)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score() != candidates[j].Score() {
			return candidates[i].Score() > candidates[j].Score()
		}
		return candidates[i].Name < candidates[j].Name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for _, repo := range candidates {
		repo.IsTracked = true
	}
}

// FetchContributionEvents fetches the full contribution record of one
// repository: pull requests (with merges and reviews), issues, issue
// comments, and PR review comments.
func (s *GitHubService) FetchContributionEvents(ctx context.Context, repo string) ([]*models.ContributionEvent, error) {
	var events []*models.ContributionEvent

	prEvents, prAuthors, err := s.fetchPullRequests(ctx, repo)
	if err != nil {
		return nil, err
	}
	events = append(events, prEvents...)

	issueEvents, err := s.fetchIssues(ctx, repo)
	if err != nil {
		return nil, err
	}
	events = append(events, issueEvents...)

	commentEvents, err := s.fetchIssueComments(ctx, repo, prAuthors)
	if err != nil {
		return nil, err
	}
	events = append(events, commentEvents...)

	reviewComments, err := s.fetchReviewComments(ctx, repo, prAuthors)
	if err != nil {
		return nil, err
	}
	events = append(events, reviewComments...)

	return events, nil
}

// fetchPullRequests lists every PR and emits a created event per PR, a merged
// event per merged PR, and review events with self-review flags. It also
// returns the PR-number-to-author table used to classify comments.
func (s *GitHubService) fetchPullRequests(ctx context.Context, repo string) ([]*models.ContributionEvent, map[int]string, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var prs []*github.PullRequest
	for {
		page, resp, err := s.client.PullRequests.List(ctx, s.org, repo, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, nil, fmt.Errorf("failed to list pull requests for %s: %w", repo, err)
		}
		prs = append(prs, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var events []*models.ContributionEvent
	prAuthors := make(map[int]string, len(prs))

	for _, pr := range prs {
		author := pr.GetUser().GetLogin()
		if author == "" {
			logger.WithField("repository", repo).Warnf("pull request %d has no author, skipping", pr.GetNumber())
			continue
		}
		prAuthors[pr.GetNumber()] = author

		created := models.NewContributionEvent(repo, models.KindPullRequestCreated, author, pr.GetCreatedAt().Time)
		created.Merged = pr.MergedAt != nil
		created.GithubID = pr.GetID()
		events = append(events, created)

		if pr.MergedAt != nil {
			merged := models.NewContributionEvent(repo, models.KindPullRequestMerged, author, pr.GetMergedAt().Time)
			merged.Merged = true
			merged.GithubID = pr.GetID()
			events = append(events, merged)
		}

		reviews, err := s.fetchReviews(ctx, repo, pr.GetNumber(), author)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, reviews...)
	}

	return events, prAuthors, nil
}

func (s *GitHubService) fetchReviews(ctx context.Context, repo string, prNumber int, prAuthor string) ([]*models.ContributionEvent, error) {
	opts := &github.ListOptions{PerPage: 100}

	var events []*models.ContributionEvent
	for {
		reviews, resp, err := s.client.PullRequests.ListReviews(ctx, s.org, repo, prNumber, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list reviews for %s#%d: %w", repo, prNumber, err)
		}

		for _, review := range reviews {
			author := review.GetUser().GetLogin()
			if author == "" {
				continue
			}

			event := models.NewContributionEvent(repo, models.KindReviewCreated, author, review.GetSubmittedAt().Time)
			event.OnPullRequest = true
			event.SelfAuthored = author == prAuthor
			event.GithubID = review.GetID()
			events = append(events, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// fetchIssues lists repository issues, skipping PR-linked ones (the REST API
// reports PRs as issues too)
func (s *GitHubService) fetchIssues(ctx context.Context, repo string) ([]*models.ContributionEvent, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var events []*models.ContributionEvent
	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, s.org, repo, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list issues for %s: %w", repo, err)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			author := issue.GetUser().GetLogin()
			if author == "" {
				continue
			}

			event := models.NewContributionEvent(repo, models.KindIssueCreated, author, issue.GetCreatedAt().Time)
			event.GithubID = issue.GetID()
			events = append(events, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// fetchIssueComments lists every conversation comment of the repository and
// classifies it onto a PR or an issue via the PR author table
func (s *GitHubService) fetchIssueComments(ctx context.Context, repo string, prAuthors map[int]string) ([]*models.ContributionEvent, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var events []*models.ContributionEvent
	for {
		comments, resp, err := s.client.Issues.ListComments(ctx, s.org, repo, 0, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list comments for %s: %w", repo, err)
		}

		for _, comment := range comments {
			author := comment.GetUser().GetLogin()
			if author == "" {
				continue
			}

			event := models.NewContributionEvent(repo, models.KindCommentCreated, author, comment.GetCreatedAt().Time)
			event.GithubID = comment.GetID()
			if number, ok := numberFromURL(comment.GetIssueURL()); ok {
				if prAuthor, isPR := prAuthors[number]; isPR {
					event.OnPullRequest = true
					event.SelfAuthored = author == prAuthor
				}
			}
			events = append(events, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// fetchReviewComments lists the repository's PR review comments (inline diff
// comments), which the conversation comment listing does not include
func (s *GitHubService) fetchReviewComments(ctx context.Context, repo string, prAuthors map[int]string) ([]*models.ContributionEvent, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var events []*models.ContributionEvent
	for {
		comments, resp, err := s.client.PullRequests.ListComments(ctx, s.org, repo, 0, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list review comments for %s: %w", repo, err)
		}

		for _, comment := range comments {
			author := comment.GetUser().GetLogin()
			if author == "" {
				continue
			}

			event := models.NewContributionEvent(repo, models.KindCommentCreated, author, comment.GetCreatedAt().Time)
			event.OnPullRequest = true
			event.GithubID = comment.GetID()
			if number, ok := numberFromURL(comment.GetPullRequestURL()); ok {
				event.SelfAuthored = author == prAuthors[number]
			}
			events = append(events, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// FetchStargazers lists a repository's stargazers with their star timestamps
func (s *GitHubService) FetchStargazers(ctx context.Context, repo string) ([]*models.StarEvent, error) {
	opts := &github.ListOptions{PerPage: 100}

	var stars []*models.StarEvent
	for {
		stargazers, resp, err := s.client.Activity.ListStargazers(ctx, s.org, repo, opts)
		if err != nil {
			if s.waitForRateLimit(ctx, err) {
				continue
			}
			return nil, fmt.Errorf("failed to list stargazers for %s: %w", repo, err)
		}

		for _, stargazer := range stargazers {
			login := stargazer.GetUser().GetLogin()
			if login == "" {
				continue
			}
			stars = append(stars, models.NewStarEvent(repo, login, stargazer.GetStarredAt().Time))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return stars, nil
}

// waitForRateLimit sleeps until the API rate limit resets when err is a rate
// limit error. Returns true when the caller should retry.
func (s *GitHubService) waitForRateLimit(ctx context.Context, err error) bool {
	var rateErr *github.RateLimitError
	if !errors.As(err, &rateErr) {
		return false
	}

	wait := time.Until(rateErr.Rate.Reset.Time) + time.Second
	if wait < time.Second {
		wait = time.Second
	}
	logger.Warnf("rate limit exceeded, waiting %s", wait)

	select {
	case <-ctx.Done():
		return false
	case <-time.After(wait):
		return true
	}
}

// numberFromURL extracts the trailing issue/PR number of an API URL
func numberFromURL(url string) (int, bool) {
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return 0, false
	}
	number, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0, false
	}
	return number, true
}
