package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DeckService handles deck-related business logic. It is also the study
// runner's deck source on the server.
type DeckService interface {
	CreateDeck(ctx context.Context, in models.NewDeck) (*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, error)
	MarkOpened(ctx context.Context, id string) error
	SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error
	RestartDeck(ctx context.Context, deckID string) error
	Stats(ctx context.Context, deckID string) (*models.DeckStats, error)
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
	now   func() time.Time
}

// NewDeckService creates a new DeckService. A nil now uses time.Now.
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository, now func() time.Time) DeckService {
	if now == nil {
		now = time.Now
	}
	return &deckService{decks: decks, cards: cards, now: now}
}

func (s *deckService) CreateDeck(ctx context.Context, in models.NewDeck) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: name=%s, cards=%d", in.Name, len(in.Cards))

	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	slug, err := s.uniqueSlug(ctx, in.Name)
	if err != nil {
		log.Error("failed to pick slug: %v", err)
		return nil, errors.NewInternalError(err)
	}

	deck := models.Deck{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
		Cards:       make([]models.Card, len(in.Cards)),
	}
	for i, c := range in.Cards {
		deck.Cards[i] = models.Card{
			ID:                 uuid.NewString(),
			DeckID:             deck.ID,
			Term:               c.Term,
			TermLanguage:       c.TermLanguage,
			Definition:         c.Definition,
			DefinitionLanguage: c.DefinitionLanguage,
			Pronunciation:      c.Pronunciation,
			PartOfSpeech:       c.PartOfSpeech,
			UsageOrGrammar:     c.UsageOrGrammar,
			Examples:           append([]string{}, c.Examples...),
		}
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	deck.Cards = flashcard.WithStatus(deck.Cards, s.now())
	log.Info("deck created: id=%s, slug=%s", deck.ID, deck.Slug)
	return &deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: id=%s", id)

	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}

	deck.Cards = flashcard.WithStatus(deck.Cards, s.now())
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks: search=%s, order=%s", filter.Search, filter.OrderBy)

	decks, err := s.decks.List(ctx, filter)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now()
	summaries := make([]models.DeckSummary, 0, len(decks))
	for _, d := range decks {
		summaries = append(summaries, models.DeckSummary{
			ID:        d.ID,
			Name:      d.Name,
			Slug:      d.Slug,
			OpenedAt:  d.OpenedAt,
			CreatedAt: d.CreatedAt,
			Stats:     flashcard.Stats(d.Cards, now),
		})
	}
	return summaries, nil
}

func (s *deckService) MarkOpened(ctx context.Context, id string) error {
	if err := s.decks.MarkOpened(ctx, id, s.now().UTC()); err != nil {
		logger.FromContext(ctx).Error("failed to mark deck opened: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// SaveAnswers stores streak and review date per card. Every id must belong
// to the deck; re-sending the same answers is harmless.
func (s *deckService) SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error {
	log := logger.FromContext(ctx)
	log.Debug("saving %d answers: deck_id=%s", len(answers), deckID)

	if len(answers) == 0 {
		return nil
	}
	if err := validate.Struct(models.SaveAnswersRequest{Answers: answers}); err != nil {
		return validationError(err)
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return errors.NewInternalError(err)
	}
	if deck == nil {
		return errors.NewNotFoundError("deck", deckID)
	}

	ids := make([]string, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	existing, err := s.cards.ExistingIDs(ctx, deckID, ids)
	if err != nil {
		log.Error("failed to check card ids: %v", err)
		return errors.NewInternalError(err)
	}
	var unknown []string
	for _, id := range ids {
		if !existing[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return errors.NewValidationError("answers", "unknown card ids: "+strings.Join(unknown, ", "))
	}

	if err := s.cards.ApplyAnswers(ctx, deckID, answers); err != nil {
		log.Error("failed to apply answers: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("saved %d answers for deck %s", len(answers), deckID)
	return nil
}

func (s *deckService) RestartDeck(ctx context.Context, deckID string) error {
	log := logger.FromContext(ctx)
	log.Debug("restarting deck: id=%s", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return errors.NewInternalError(err)
	}
	if deck == nil {
		return errors.NewNotFoundError("deck", deckID)
	}

	n, err := s.cards.ResetProgress(ctx, deckID)
	if err != nil {
		log.Error("failed to reset progress: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deck %s restarted, %d cards reset", deckID, n)
	return nil
}

func (s *deckService) Stats(ctx context.Context, deckID string) (*models.DeckStats, error) {
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		deck, err := s.decks.Get(ctx, deckID)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if deck == nil {
			return nil, errors.NewNotFoundError("deck", deckID)
		}
	}
	stats := flashcard.Stats(cards, s.now())
	return &stats, nil
}

func (s *deckService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "deck"
	}
	exists, err := s.decks.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// validationError turns validator output into a VALIDATION_ERROR naming the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.NewValidationError(fe.Namespace(), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return errors.NewBadRequestError(err.Error())
}
