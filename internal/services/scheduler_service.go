package services

import (
	"context"
	"fmt"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// SchedulerService enqueues the daily refresh: a repository selection pass,
// one fetch job per tracked repository, and a trailing aggregate job that
// runs once the fetches drain.
type SchedulerService struct {
	githubService *GitHubService
	repoRepo      *repositories.RepositoryRepository
	jobRepo       *repositories.JobRepository
	repoLimit     int
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(
	githubService *GitHubService,
	repoRepo *repositories.RepositoryRepository,
	jobRepo *repositories.JobRepository,
	repoLimit int,
) *SchedulerService {
	return &SchedulerService{
		githubService: githubService,
		repoRepo:      repoRepo,
		jobRepo:       jobRepo,
		repoLimit:     repoLimit,
	}
}

// StartScheduler schedules a refresh immediately and then once per day
func (s *SchedulerService) StartScheduler(ctx context.Context) {
	go func() {
		if err := s.ScheduleRefresh(ctx); err != nil {
			logger.WithError(err).Errorf("initial refresh failed to schedule")
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ScheduleRefresh(ctx); err != nil {
					logger.WithError(err).Errorf("daily refresh failed to schedule")
				}
			}
		}
	}()
}

// ScheduleRefresh reselects the tracked repositories and enqueues the fetch
// and aggregate jobs for one full pipeline run. A refresh already in flight
// is left alone.
func (s *SchedulerService) ScheduleRefresh(ctx context.Context) error {
	pending, err := s.jobRepo.HasPendingJob(models.JobTypeFetch)
	if err != nil {
		return err
	}
	if pending {
		logger.Info("refresh already in progress, skipping")
		return nil
	}

	repos, err := s.githubService.FetchOrganizationRepositories(ctx, s.repoLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch organization repositories: %w", err)
	}

	if err := s.repoRepo.UntrackAll(); err != nil {
		return err
	}
	for _, repo := range repos {
		if err := s.repoRepo.Upsert(repo); err != nil {
			return fmt.Errorf("failed to store repository %s: %w", repo.Name, err)
		}
	}

	tracked, err := s.repoRepo.GetTracked()
	if err != nil {
		return err
	}

	for _, repo := range tracked {
		if err := s.jobRepo.Create(models.NewFetchJob(repo.Name)); err != nil {
			return fmt.Errorf("failed to create fetch job for %s: %w", repo.Name, err)
		}
	}

	if err := s.jobRepo.Create(models.NewJob(models.JobTypeAggregate)); err != nil {
		return fmt.Errorf("failed to create aggregate job: %w", err)
	}

	logger.Infof("scheduled refresh for %d repositories", len(tracked))
	return nil
}
