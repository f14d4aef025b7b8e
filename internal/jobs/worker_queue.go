package jobs

import (
	"github.com/vytor/cheatcodes/internal/worker"
)

// WorkerQueue implements SweepQueue using a worker pool
type WorkerQueue struct {
	sweepPool *worker.Pool
	sweeper   worker.Sweeper
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(sweepPool *worker.Pool, sweeper worker.Sweeper) SweepQueue {
	return &WorkerQueue{
		sweepPool: sweepPool,
		sweeper:   sweeper,
	}
}

func (q *WorkerQueue) EnqueueSweep(profileID int64) error {
	return q.sweepPool.Submit(&worker.SweepJob{
		Sweeper:   q.sweeper,
		ProfileID: profileID,
	})
}
