// Package autosave persists pending study answers once answering goes quiet.
//
// A Coordinator is touched after every answer. When no further touch arrives
// within the quiet period it snapshots the pending answers, hands them to a
// Persister and settles only the entries that are still unchanged, so an
// answer recorded while the save was in flight is kept for the next flush.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/worker"
)

const (
	DefaultQuietPeriod  = time.Second
	DefaultFlushTimeout = 10 * time.Second
)

// Persister stores a batch of answers for a deck. Saving the same answer
// twice must be safe.
type Persister interface {
	SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error
}

// Source owns the pending answers.
type Source interface {
	Snapshot() []models.Answer
	Settle(saved []models.Answer)
}

type Option func(*Coordinator)

func WithQuietPeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithSubmitter runs timer-triggered flushes through submit, typically a
// worker pool's TrySubmit. If submit fails the flush runs inline.
func WithSubmitter(submit func(worker.Job) error) Option {
	return func(c *Coordinator) { c.submit = submit }
}

// WithErrorHandler is called with every failed flush, including those run by
// the quiet-period timer where no caller sees the error.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Coordinator) { c.onError = fn }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l.WithPrefix("autosave")
		}
	}
}

type Coordinator struct {
	deckID    string
	persister Persister
	source    Source
	quiet     time.Duration
	submit    func(worker.Job) error
	onError   func(error)
	log       *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	closed  bool
	saving  bool
	lastErr error

	// flushMu keeps at most one save in flight.
	flushMu sync.Mutex
}

func New(deckID string, persister Persister, source Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		deckID:    deckID,
		persister: persister,
		source:    source,
		quiet:     DefaultQuietPeriod,
		log:       logger.Default().WithPrefix("autosave"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("deck_id", deckID)
	return c
}

// Touch (re)starts the quiet-period timer.
func (c *Coordinator) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	gen := c.gen
	c.timer = time.AfterFunc(c.quiet, func() { c.fire(gen) })
}

// Saving reports whether a flush is in flight.
func (c *Coordinator) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// LastError returns the error of the most recent flush, or nil if it succeeded.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Flush cancels a scheduled flush and saves the pending answers now.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.stopTimerLocked()
	c.mu.Unlock()
	return c.flush(ctx)
}

// Close stops the timer for good and performs a final flush.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	return c.flush(ctx)
}

// stopTimerLocked invalidates any armed timer. A timer that already fired
// sees a newer generation and returns without flushing.
func (c *Coordinator) stopTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	job := &flushJob{c: c}
	if c.submit != nil {
		err := c.submit(job)
		if err == nil {
			return
		}
		c.log.Warn("could not queue flush, running inline: %v", err)
	}
	_ = job.Run(context.Background())
}

func (c *Coordinator) flush(ctx context.Context) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	snapshot := c.source.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	c.setSaving(true)
	c.log.Debug("saving %d answers", len(snapshot))
	err := c.persister.SaveAnswers(ctx, c.deckID, snapshot)
	c.setSaving(false)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		c.log.Error("failed to save %d answers: %v", len(snapshot), err)
		if c.onError != nil {
			c.onError(err)
		}
		return fmt.Errorf("save %d answers for deck %s: %w", len(snapshot), c.deckID, err)
	}

	c.source.Settle(snapshot)
	c.log.Debug("saved %d answers", len(snapshot))
	return nil
}

func (c *Coordinator) setSaving(v bool) {
	c.mu.Lock()
	c.saving = v
	c.mu.Unlock()
}

// flushJob runs a timer-triggered flush on a worker.
type flushJob struct {
	c *Coordinator
}

func (j *flushJob) Name() string { return "autosave_flush" }

func (j *flushJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultFlushTimeout)
	defer cancel()
	return j.c.flush(ctx)
}
