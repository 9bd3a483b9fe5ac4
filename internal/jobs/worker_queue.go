package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/worker"
)

const SweepJobName = "session_sweep"

// Sweeper ends idle study sessions.
type Sweeper interface {
	SweepIdle(ctx context.Context, ttl time.Duration) int
}

// WorkerQueue implements JobQueue on a worker pool
type WorkerQueue struct {
	pool *worker.Pool
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool) JobQueue {
	return &WorkerQueue{pool: pool}
}

func (q *WorkerQueue) SubmitFlush(job worker.Job) error {
	if err := q.pool.TrySubmit(job); err != nil {
		return fmt.Errorf("submit %s: %w", job.Name(), err)
	}
	return nil
}

// EnqueueSweep queues one sweep. Sweeps are skipped rather than queued
// behind flushes when the pool is saturated.
func (q *WorkerQueue) EnqueueSweep(sessions Sweeper, ttl time.Duration) error {
	return q.pool.TrySubmit(worker.FuncJob{
		JobName: SweepJobName,
		Fn: func(ctx context.Context) error {
			if n := sessions.SweepIdle(ctx, ttl); n > 0 {
				logger.FromContext(ctx).Debug("sweep ended %d sessions", n)
			}
			return nil
		},
	})
}
