package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/study"
	"github.com/vytor/flashdeck/internal/worker"
)

// StudyService keeps server-side study sessions, one runner per session id.
type StudyService interface {
	Start(ctx context.Context, deckID string, opts models.StudyOptions) (string, study.View, error)
	View(ctx context.Context, sessionID string) (study.View, error)
	Answer(ctx context.Context, sessionID string, resp study.Response) (study.Result, error)
	Shuffle(ctx context.Context, sessionID string) (study.View, error)
	SetIgnoreDueDate(ctx context.Context, sessionID string, ignore bool) (study.View, error)
	Restart(ctx context.Context, sessionID string) (study.View, error)
	End(ctx context.Context, sessionID string) error
	// SweepIdle ends sessions unused for longer than ttl and returns how many it ended.
	SweepIdle(ctx context.Context, ttl time.Duration) int
	// CloseAll ends every session, flushing pending answers.
	CloseAll(ctx context.Context) error
}

type StudyConfig struct {
	QuietPeriod time.Duration
	// Submit runs autosave flushes in the background.
	Submit func(worker.Job) error
	Now    func() time.Time
}

type studySession struct {
	ctrl     study.Controller
	lastUsed time.Time
}

type studyService struct {
	decks DeckService
	cfg   StudyConfig

	mu       sync.Mutex
	sessions map[string]*studySession
}

// NewStudyService creates a new StudyService backed by decks.
func NewStudyService(decks DeckService, cfg StudyConfig) StudyService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &studyService{decks: decks, cfg: cfg, sessions: map[string]*studySession{}}
}

func (s *studyService) Start(ctx context.Context, deckID string, opts models.StudyOptions) (string, study.View, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting study session: deck_id=%s, mode=%s", deckID, opts.Mode)

	if err := validate.Struct(opts); err != nil {
		return "", study.View{}, validationError(err)
	}

	ctrl, err := study.New(deckID, s.decks, study.Options{
		Mode:          study.Mode(opts.Mode),
		IgnoreDueDate: opts.IgnoreDueDate,
		Types:         opts.Types,
		Direction:     opts.Direction,
		QuietPeriod:   s.cfg.QuietPeriod,
		Submit:        s.cfg.Submit,
		Now:           s.cfg.Now,
	})
	if err != nil {
		return "", study.View{}, errors.NewBadRequestError(err.Error())
	}
	if err := ctrl.Start(ctx); err != nil {
		return "", study.View{}, studyError(err)
	}
	view := ctrl.View()
	if view.Reason == study.ReasonNotEnoughCards {
		_ = ctrl.Close(ctx)
		return "", view, errors.NewUnprocessableError("deck needs at least 4 cards to generate questions", nil)
	}
	if err := s.decks.MarkOpened(ctx, deckID); err != nil {
		log.Warn("failed to mark deck opened: %v", err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &studySession{ctrl: ctrl, lastUsed: s.cfg.Now()}
	s.mu.Unlock()

	log.Info("study session started: session_id=%s, deck_id=%s", id, deckID)
	return id, view, nil
}

func (s *studyService) View(ctx context.Context, sessionID string) (study.View, error) {
	ctrl, err := s.get(sessionID)
	if err != nil {
		return study.View{}, err
	}
	return ctrl.View(), nil
}

func (s *studyService) Answer(ctx context.Context, sessionID string, resp study.Response) (study.Result, error) {
	ctrl, err := s.get(sessionID)
	if err != nil {
		return study.Result{}, err
	}
	res, err := ctrl.Answer(ctx, resp)
	if err != nil {
		return study.Result{}, studyError(err)
	}
	return res, nil
}

func (s *studyService) Shuffle(ctx context.Context, sessionID string) (study.View, error) {
	ctrl, err := s.get(sessionID)
	if err != nil {
		return study.View{}, err
	}
	return ctrl.Shuffle(), nil
}

func (s *studyService) SetIgnoreDueDate(ctx context.Context, sessionID string, ignore bool) (study.View, error) {
	ctrl, err := s.get(sessionID)
	if err != nil {
		return study.View{}, err
	}
	if err := ctrl.SetIgnoreDueDate(ctx, ignore); err != nil {
		return study.View{}, studyError(err)
	}
	return ctrl.View(), nil
}

func (s *studyService) Restart(ctx context.Context, sessionID string) (study.View, error) {
	ctrl, err := s.get(sessionID)
	if err != nil {
		return study.View{}, err
	}
	if err := ctrl.Restart(ctx); err != nil {
		return study.View{}, studyError(err)
	}
	return ctrl.View(), nil
}

func (s *studyService) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session", sessionID)
	}

	logger.FromContext(ctx).Info("ending study session: session_id=%s", sessionID)
	if err := sess.ctrl.Close(ctx); err != nil {
		return studyError(err)
	}
	return nil
}

func (s *studyService) SweepIdle(ctx context.Context, ttl time.Duration) int {
	log := logger.FromContext(ctx)
	cutoff := s.cfg.Now().Add(-ttl)

	s.mu.Lock()
	var idle []study.Controller
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			idle = append(idle, sess.ctrl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range idle {
		if err := ctrl.Close(ctx); err != nil {
			log.Warn("final flush of idle session for deck %s failed: %v", ctrl.DeckID(), err)
		}
	}
	if len(idle) > 0 {
		log.Info("swept %d idle study sessions", len(idle))
	}
	return len(idle)
}

func (s *studyService) CloseAll(ctx context.Context) error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*studySession{}
	s.mu.Unlock()

	var errs []error
	for _, sess := range sessions {
		if err := sess.ctrl.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (s *studyService) get(sessionID string) (study.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	sess.lastUsed = s.cfg.Now()
	return sess.ctrl, nil
}

// studyError maps runner errors onto AppErrors, keeping any AppError already in the chain.
func studyError(err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, study.ErrDeckNotFound):
		return errors.NewNotFoundError("deck", err.Error())
	case stderrors.Is(err, study.ErrInvalidResponse):
		return errors.NewValidationError("response", err.Error())
	case stderrors.Is(err, study.ErrNothingToAnswer):
		return errors.NewBadRequestError(err.Error())
	case stderrors.Is(err, study.ErrClosed):
		return errors.NewBadRequestError(err.Error())
	default:
		return errors.NewInternalError(err)
	}
}
