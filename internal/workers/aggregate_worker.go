package workers

import (
	"context"
	"time"

	"github.com/orgpulse/orgpulse/internal/models"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/internal/services"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// AggregateWorker processes aggregate jobs. It only claims a job once all
// fetch jobs have drained, so every aggregation pass sees a complete store
// snapshot.
type AggregateWorker struct {
	*BaseWorker
	jobRepo         *repositories.JobRepository
	pipelineService *services.PipelineService
}

// NewAggregateWorker creates a new AggregateWorker
func NewAggregateWorker(
	workerID string,
	jobRepo *repositories.JobRepository,
	pipelineService *services.PipelineService,
) *AggregateWorker {
	return &AggregateWorker{
		BaseWorker:      NewBaseWorker(workerID, models.JobTypeAggregate),
		jobRepo:         jobRepo,
		pipelineService: pipelineService,
	}
}

// Start begins the aggregate worker loop
func (w *AggregateWorker) Start(ctx context.Context) error {
	logger.Infof("aggregate worker %s started", w.ID())

	for {
		select {
		case <-ctx.Done():
			logger.Infof("aggregate worker %s stopping due to context cancellation", w.ID())
			return ctx.Err()
		case <-w.stopChan:
			logger.Infof("aggregate worker %s stopping", w.ID())
			return nil
		default:
			job, err := w.jobRepo.GetNextPendingAggregateJob()
			if err != nil {
				logger.WithError(err).Errorf("aggregate worker %s error getting job", w.ID())
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(10 * time.Second)
				continue
			}

			w.processJob(job)
		}
	}
}

func (w *AggregateWorker) processJob(job *models.Job) {
	logger.Infof("aggregate worker %s processing job %s", w.ID(), job.ID)

	if err := w.pipelineService.Run(time.Now()); err != nil {
		logger.WithError(err).Errorf("aggregate worker %s failed job %s", w.ID(), job.ID)
		job.MarkFailed(err.Error())
	} else {
		job.MarkCompleted()
	}

	if err := w.jobRepo.Update(job); err != nil {
		logger.WithError(err).Errorf("aggregate worker %s error updating job %s", w.ID(), job.ID)
	}
}
