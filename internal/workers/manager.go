package workers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/internal/services"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

// WorkerManager owns the worker pool: N fetch workers and one aggregate
// worker, started and stopped together
type WorkerManager struct {
	workers         []Worker
	jobRepo         *repositories.JobRepository
	eventRepo       *repositories.EventRepository
	starRepo        *repositories.StarRepository
	githubService   *services.GitHubService
	pipelineService *services.PipelineService
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(
	jobRepo *repositories.JobRepository,
	eventRepo *repositories.EventRepository,
	starRepo *repositories.StarRepository,
	githubService *services.GitHubService,
	pipelineService *services.PipelineService,
) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:         make([]Worker, 0),
		jobRepo:         jobRepo,
		eventRepo:       eventRepo,
		starRepo:        starRepo,
		githubService:   githubService,
		pipelineService: pipelineService,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// StartAll starts all workers based on environment configuration
func (wm *WorkerManager) StartAll() error {
	fetchWorkers := wm.getWorkerCount("FETCH_WORKERS", 2)

	logger.Infof("starting workers - fetch: %d, aggregate: 1", fetchWorkers)

	for i := 0; i < fetchWorkers; i++ {
		worker := NewFetchWorker(
			fmt.Sprintf("fetch-%d", i+1),
			wm.jobRepo, wm.eventRepo, wm.starRepo, wm.githubService,
		)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	aggregate := NewAggregateWorker("aggregate-1", wm.jobRepo, wm.pipelineService)
	wm.workers = append(wm.workers, aggregate)
	wm.startWorker(aggregate)

	logger.Infof("started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("error stopping worker %s", worker.ID())
		}
	}

	wm.wg.Wait()

	logger.Info("all workers stopped")
	return nil
}

func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Errorf("worker %s exited with error", worker.ID())
		}
	}()
}

// getWorkerCount reads a worker count from an environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
	}
	return defaultValue
}
