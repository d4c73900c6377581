package workers

import (
	"context"

	"github.com/orgpulse/orgpulse/internal/models"
)

// Worker is a background loop that claims and processes jobs of one type
type Worker interface {
	// Start begins the worker loop; it returns when the context is done
	// or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the worker
	Stop() error

	// JobType returns the type of job this worker handles
	JobType() models.JobType

	// ID returns the unique identifier for this worker
	ID() string
}

// BaseWorker provides common state for workers
type BaseWorker struct {
	workerID string
	jobType  models.JobType
	stopChan chan struct{}
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string, jobType models.JobType) *BaseWorker {
	return &BaseWorker{
		workerID: workerID,
		jobType:  jobType,
		stopChan: make(chan struct{}),
	}
}

// JobType returns the job type this worker handles
func (w *BaseWorker) JobType() models.JobType {
	return w.jobType
}

// ID returns the worker's unique identifier
func (w *BaseWorker) ID() string {
	return w.workerID
}

// Stop gracefully stops the worker
func (w *BaseWorker) Stop() error {
	select {
	case <-w.stopChan:
		// already stopped
	default:
		close(w.stopChan)
	}
	return nil
}
