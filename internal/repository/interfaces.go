package repository

import (
	"context"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	// Create stores the deck together with its cards.
	Create(ctx context.Context, deck models.Deck) error
	// Get returns the deck with its cards in position order, or nil if it does not exist.
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
	MarkOpened(ctx context.Context, id string, at time.Time) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CardRepository handles card scheduling data access
type CardRepository interface {
	ListByDeck(ctx context.Context, deckID string) ([]models.Card, error)
	// ApplyAnswers writes streak and review date for each answer in one transaction.
	ApplyAnswers(ctx context.Context, deckID string, answers []models.Answer) error
	// ResetProgress clears streak and review date of every card in the deck.
	ResetProgress(ctx context.Context, deckID string) (int64, error)
	// ExistingIDs returns which of ids belong to the deck.
	ExistingIDs(ctx context.Context, deckID string, ids []string) (map[string]bool, error)
}
