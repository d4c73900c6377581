package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/internal/services"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// FetchWorker processes fetch jobs: it pulls one repository's contribution
// and star records from GitHub and upserts them into the store
type FetchWorker struct {
	*BaseWorker
	jobRepo       *repositories.JobRepository
	eventRepo     *repositories.EventRepository
	starRepo      *repositories.StarRepository
	githubService *services.GitHubService
}

// NewFetchWorker creates a new FetchWorker
func NewFetchWorker(
	workerID string,
	jobRepo *repositories.JobRepository,
	eventRepo *repositories.EventRepository,
	starRepo *repositories.StarRepository,
	githubService *services.GitHubService,
) *FetchWorker {
	return &FetchWorker{
		BaseWorker:    NewBaseWorker(workerID, models.JobTypeFetch),
		jobRepo:       jobRepo,
		eventRepo:     eventRepo,
		starRepo:      starRepo,
		githubService: githubService,
	}
}

// Start begins the fetch worker loop
func (w *FetchWorker) Start(ctx context.Context) error {
	logger.Infof("fetch worker %s started", w.ID())

	for {
		select {
		case <-ctx.Done():
			logger.Infof("fetch worker %s stopping due to context cancellation", w.ID())
			return ctx.Err()
		case <-w.stopChan:
			logger.Infof("fetch worker %s stopping", w.ID())
			return nil
		default:
			job, err := w.jobRepo.GetNextPendingJob(models.JobTypeFetch)
			if err != nil {
				logger.WithError(err).Errorf("fetch worker %s error getting job", w.ID())
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(10 * time.Second)
				continue
			}

			w.processJob(ctx, job)
		}
	}
}

func (w *FetchWorker) processJob(ctx context.Context, job *models.Job) {
	logger.Infof("fetch worker %s processing job %s", w.ID(), job.ID)

	if err := w.fetchRepository(ctx, job); err != nil {
		logger.WithError(err).Errorf("fetch worker %s failed job %s", w.ID(), job.ID)
		job.MarkFailed(err.Error())
	} else {
		job.MarkCompleted()
	}

	if err := w.jobRepo.Update(job); err != nil {
		logger.WithError(err).Errorf("fetch worker %s error updating job %s", w.ID(), job.ID)
	}
}

func (w *FetchWorker) fetchRepository(ctx context.Context, job *models.Job) error {
	if job.Repository == nil {
		return fmt.Errorf("fetch job %s has no repository", job.ID)
	}
	repo := *job.Repository

	events, err := w.githubService.FetchContributionEvents(ctx, repo)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := w.eventRepo.Upsert(event); err != nil {
			return fmt.Errorf("failed to store event for %s: %w", repo, err)
		}
	}

	stars, err := w.githubService.FetchStargazers(ctx, repo)
	if err != nil {
		return err
	}
	for _, star := range stars {
		if err := w.starRepo.Upsert(star); err != nil {
			return fmt.Errorf("failed to store star for %s: %w", repo, err)
		}
	}

	logger.Infof("fetched %d events and %d stars for %s", len(events), len(stars), repo)
	return nil
}
