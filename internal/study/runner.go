// Package study runs a study session against a deck source: it filters due
// cards, builds the items for the chosen mode, drives the session and keeps
// answers flowing to persistence through autosave.
package study

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/autosave"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/session"
	"github.com/vytor/flashdeck/internal/worker"
)

// DeckSource fetches decks and persists study progress.
type DeckSource interface {
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error
	RestartDeck(ctx context.Context, deckID string) error
}

// Controller is a running study session, whatever its mode.
type Controller interface {
	DeckID() string
	Mode() Mode
	Start(ctx context.Context) error
	View() View
	Answer(ctx context.Context, resp Response) (Result, error)
	Shuffle() View
	SetIgnoreDueDate(ctx context.Context, ignore bool) error
	Restart(ctx context.Context) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

type Options struct {
	Mode          Mode
	IgnoreDueDate bool
	// Types and Direction configure learn mode question generation.
	Types       []models.QuestionType
	Direction   models.Direction
	QuietPeriod time.Duration
	// Submit runs autosave flushes, typically worker.Pool.TrySubmit.
	Submit func(worker.Job) error
	// OnSaveError is told about every failed save, including background ones.
	OnSaveError func(error)
	Now         func() time.Time
	Rand        *rand.Rand
	Logger      *logger.Logger
}

// New returns a runner for opts.Mode. An empty mode means flashcards.
func New(deckID string, source DeckSource, opts Options) (Controller, error) {
	if opts.Mode == "" {
		opts.Mode = ModeFlashcard
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidResponse, opts.Mode)
	}
	if opts.Mode == ModeLearn {
		return NewLearnRunner(deckID, source, opts), nil
	}
	return NewFlashcardRunner(deckID, source, opts), nil
}

// mode supplies what differs between studying cards and studying questions.
type mode[T session.Item[T]] struct {
	name Mode
	// build turns the fetched deck into session items, or explains why there are none.
	build func(r *Runner[T], deck *models.Deck) ([]T, Reason)
	grade func(item T, resp Response) (correct bool, expected string, err error)
	show  func(item T) any
}

// Runner owns one session. It is safe for concurrent use; the autosave timer
// reads pending answers from its own goroutine.
type Runner[T session.Item[T]] struct {
	deckID string
	source DeckSource
	mode   mode[T]
	opts   Options
	now    func() time.Time
	rng    *rand.Rand
	log    *logger.Logger
	saver  *autosave.Coordinator

	mu     sync.Mutex
	sess   session.Session[T]
	deck   *models.Deck
	ignore bool
	reason Reason
	closed bool
}

func newRunner[T session.Item[T]](deckID string, source DeckSource, m mode[T], opts Options) *Runner[T] {
	r := &Runner[T]{
		deckID: deckID,
		source: source,
		mode:   m,
		opts:   opts,
		now:    opts.Now,
		rng:    opts.Rand,
		ignore: opts.IgnoreDueDate,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	r.log = log.WithPrefix("study").WithFields(map[string]any{"deck_id": deckID, "mode": string(m.name)})

	saveOpts := []autosave.Option{
		autosave.WithQuietPeriod(opts.QuietPeriod),
		autosave.WithLogger(log),
	}
	if opts.Submit != nil {
		saveOpts = append(saveOpts, autosave.WithSubmitter(opts.Submit))
	}
	if opts.OnSaveError != nil {
		saveOpts = append(saveOpts, autosave.WithErrorHandler(opts.OnSaveError))
	}
	r.saver = autosave.New(deckID, source, pending[T]{r: r}, saveOpts...)
	return r
}

func (r *Runner[T]) DeckID() string { return r.deckID }

func (r *Runner[T]) Mode() Mode { return r.mode.name }

// Start fetches the deck and builds the first session.
func (r *Runner[T]) Start(ctx context.Context) error {
	r.mu.Lock()
	ignore := r.ignore
	r.mu.Unlock()
	return r.load(ctx, ignore)
}

// View describes the session as it stands.
func (r *Runner[T]) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// Answer grades resp against the current item and records the result. When
// the session runs out of items the pending answers are flushed; with
// ignore-due-date on, the deck is then fetched again for another round.
func (r *Runner[T]) Answer(ctx context.Context, resp Response) (Result, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Result{}, ErrClosed
	}
	item, ok := r.sess.Current()
	if !ok {
		r.mu.Unlock()
		return Result{}, ErrNothingToAnswer
	}
	correct, expected, err := r.mode.grade(item, resp)
	if err != nil {
		r.mu.Unlock()
		return Result{}, err
	}
	r.sess = r.sess.Answer(correct, r.now())
	done := r.sess.Done()
	ignore := r.ignore
	r.mu.Unlock()

	r.log.Debug("answered %s: correct=%t", item.Key(), correct)
	r.saver.Touch()

	if done {
		r.log.Info("session completed, flushing answers")
		if err := r.saver.Flush(ctx); err != nil {
			r.log.Warn("flush on completion failed: %v", err)
		} else if ignore {
			if err := r.load(ctx, true); err != nil {
				r.log.Warn("failed to refetch deck for another round: %v", err)
			}
		}
	}

	return Result{Correct: correct, Expected: expected, View: r.View()}, nil
}

// Shuffle reorders the remaining items.
func (r *Runner[T]) Shuffle() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sess = r.sess.Shuffle(r.rng)
	return r.viewLocked()
}

// SetIgnoreDueDate switches between due cards only and the whole deck. Pending
// answers are flushed first; if that fails nothing changes.
func (r *Runner[T]) SetIgnoreDueDate(ctx context.Context, ignore bool) error {
	if err := r.saver.Flush(ctx); err != nil {
		return err
	}
	return r.load(ctx, ignore)
}

// Restart flushes pending answers, resets the deck's progress at the source,
// turns ignore-due-date off and starts over.
func (r *Runner[T]) Restart(ctx context.Context) error {
	if err := r.saver.Flush(ctx); err != nil {
		return err
	}
	if err := r.source.RestartDeck(ctx, r.deckID); err != nil {
		r.log.Error("failed to restart deck: %v", err)
		return fmt.Errorf("restart deck %s: %w", r.deckID, err)
	}
	return r.load(ctx, false)
}

// Flush saves pending answers now.
func (r *Runner[T]) Flush(ctx context.Context) error {
	return r.saver.Flush(ctx)
}

// Close stops autosave and makes a final flush. The runner accepts no answers afterwards.
func (r *Runner[T]) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.saver.Close(ctx)
}

// load fetches the deck and resets the session with ignore applied. Answers
// recorded while the fetch was in flight are saved and the deck fetched again,
// so the reset never discards them. Nothing changes if a fetch or save fails.
func (r *Runner[T]) load(ctx context.Context, ignore bool) error {
	for {
		deck, err := r.source.GetDeck(ctx, r.deckID)
		if err != nil {
			r.log.Error("failed to fetch deck: %v", err)
			return fmt.Errorf("fetch deck %s: %w", r.deckID, err)
		}
		if deck == nil {
			return ErrDeckNotFound
		}

		r.mu.Lock()
		if n := r.sess.PendingCount(); n > 0 {
			r.mu.Unlock()
			r.log.Debug("%d answers arrived during fetch, saving before reset", n)
			if err := r.saver.Flush(ctx); err != nil {
				return err
			}
			continue
		}
		r.deck = deck
		r.ignore = ignore
		items, reason := r.mode.build(r, deck)
		r.sess = r.sess.Reset(items)
		r.reason = reason
		r.mu.Unlock()
		r.log.Debug("session reset: items=%d, ignore_due_date=%t, reason=%s", len(items), ignore, reason)
		return nil
	}
}

func (r *Runner[T]) viewLocked() View {
	v := View{
		DeckID:        r.deckID,
		Mode:          r.mode.name,
		IgnoreDueDate: r.ignore,
		State:         r.sess.State().String(),
		Total:         r.sess.Total(),
		Known:         r.sess.Known(),
		Skipped:       r.sess.Skipped(),
		Remaining:     len(r.sess.Queue()),
		Retry:         len(r.sess.RetryQueue()),
		Pending:       r.sess.PendingCount(),
		Progress:      r.sess.Progress(),
		Saving:        r.saver.Saving(),
	}
	if r.deck != nil {
		v.DeckName = r.deck.Name
	}
	if item, ok := r.sess.Current(); ok {
		v.Current = r.mode.show(item)
	} else if r.sess.Done() {
		v.Reason = ReasonCompleted
	} else {
		v.Reason = r.reason
	}
	if err := r.saver.LastError(); err != nil {
		v.LastSaveError = err.Error()
	}
	return v
}

// pending exposes the runner's unsaved answers to autosave.
type pending[T session.Item[T]] struct {
	r *Runner[T]
}

func (p pending[T]) Snapshot() []models.Answer {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	return p.r.sess.Pending()
}

func (p pending[T]) Settle(saved []models.Answer) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	p.r.sess = p.r.sess.Settle(saved)
}
