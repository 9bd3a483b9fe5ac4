// Package session implements the study loop: a forward queue, a retry queue
// for missed items, answer counters and the batch of unsaved answers.
//
// Session is a value type. Every transition returns the next Session and
// leaves the receiver untouched, so callers own synchronization and can keep
// or discard previous states freely.
package session

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

// Item is anything that can be studied: a card or a generated question.
type Item[T any] interface {
	Key() string
	Review() models.ReviewState
	WithReview(models.ReviewState) T
	Clone() T
}

// State is the coarse state of a session.
type State int

const (
	// StateEmpty has no current item. It is both the initial and terminal state.
	StateEmpty State = iota
	// StateActive has an item waiting for an answer.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	default:
		return "empty"
	}
}

type Session[T Item[T]] struct {
	queue      []T
	retryQueue []T
	current    T
	hasCurrent bool
	pending    models.AnswerBatch
	total      int
	known      int
	skipped    int
}

// New starts a session over items. Items are cloned; the first becomes current.
func New[T Item[T]](items []T) Session[T] {
	queue := make([]T, len(items))
	for i, it := range items {
		queue[i] = it.Clone()
	}
	s := Session[T]{queue: queue, total: len(items)}
	return s.advance()
}

// Reset discards all progress, queues and pending answers and starts over with items.
func (s Session[T]) Reset(items []T) Session[T] {
	return New(items)
}

// Answer records an answer for the current item. Without a current item it is a no-op.
//
// The item is rescheduled, counted, and upserted into the pending batch. A
// missed item goes to the back of the retry queue, which replaces the main
// queue once that runs out.
func (s Session[T]) Answer(correct bool, now time.Time) Session[T] {
	if !s.hasCurrent {
		return s
	}

	next := s.clone()
	updated := s.current.WithReview(flashcard.Schedule(s.current.Review(), correct, now))

	if correct {
		next.known++
	} else {
		next.skipped++
		next.retryQueue = append(next.retryQueue, updated)
	}
	next.pending = next.pending.Upsert(models.AnswerFor(updated.Key(), updated.Review()))

	if len(next.queue) == 0 && len(next.retryQueue) > 0 {
		next.queue, next.retryQueue = next.retryQueue, nil
	}
	return next.advance()
}

// Shuffle reorders both queues and sends the current item to the back of the
// main queue before drawing a new current item.
func (s Session[T]) Shuffle(rng *rand.Rand) Session[T] {
	if !s.hasCurrent {
		return s
	}
	next := s.clone()
	next.queue = shuffle(rng, next.queue)
	next.retryQueue = shuffle(rng, next.retryQueue)
	next.queue = append(next.queue, next.current)
	return next.advance()
}

// Settle removes answers that were persisted. See models.AnswerBatch.Settle.
func (s Session[T]) Settle(saved []models.Answer) Session[T] {
	next := s.clone()
	next.pending = s.pending.Settle(saved)
	return next
}

// Current returns the item awaiting an answer.
func (s Session[T]) Current() (T, bool) {
	if !s.hasCurrent {
		var zero T
		return zero, false
	}
	return s.current.Clone(), true
}

func (s Session[T]) State() State {
	if s.hasCurrent {
		return StateActive
	}
	return StateEmpty
}

// Done reports whether a started session has run out of items.
func (s Session[T]) Done() bool {
	return !s.hasCurrent && s.total > 0
}

// Pending returns the unsaved answers in the order they were first recorded.
func (s Session[T]) Pending() []models.Answer { return s.pending.Answers() }

func (s Session[T]) PendingCount() int { return s.pending.Len() }

// Queue returns copies of the items still waiting in the main queue.
func (s Session[T]) Queue() []T { return cloneItems(s.queue) }

// RetryQueue returns copies of the missed items waiting for the next pass.
func (s Session[T]) RetryQueue() []T { return cloneItems(s.retryQueue) }

func (s Session[T]) Total() int   { return s.total }
func (s Session[T]) Known() int   { return s.known }
func (s Session[T]) Skipped() int { return s.skipped }

// Progress is the share of items answered correctly, in percent.
func (s Session[T]) Progress() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.known) / float64(s.total) * 100
}

// advance pops the head of the queue into current, or clears current when empty.
func (s Session[T]) advance() Session[T] {
	if len(s.queue) == 0 {
		var zero T
		s.current, s.hasCurrent = zero, false
		return s
	}
	s.current, s.hasCurrent = s.queue[0], true
	s.queue = s.queue[1:]
	return s
}

func (s Session[T]) clone() Session[T] {
	s.queue = slices.Clone(s.queue)
	s.retryQueue = slices.Clone(s.retryQueue)
	return s
}

func cloneItems[T Item[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func shuffle[T any](rng *rand.Rand, items []T) []T {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	return items
}
