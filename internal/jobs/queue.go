package jobs

import (
	"time"

	"github.com/vytor/flashdeck/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// SubmitFlush queues an autosave flush without blocking. A full queue is
	// reported so the caller can flush inline.
	SubmitFlush(job worker.Job) error
	EnqueueSweep(sessions Sweeper, ttl time.Duration) error
}
