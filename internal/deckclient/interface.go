package deckclient

import (
	"context"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/study"
)

// ClientInterface is what the study CLI needs from the deck server.
type ClientInterface interface {
	study.DeckSource
	Stats(ctx context.Context, deckID string) (*models.DeckStats, error)
}

var _ ClientInterface = (*Client)(nil)
