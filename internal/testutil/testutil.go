package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is configured with foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.ApplyMigrations(context.Background(), sqlDB))
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// NewDeckInput builds a deck creation request with n numbered cards.
func NewDeckInput(name string, n int) models.NewDeck {
	cards := make([]models.NewCard, n)
	for i := range cards {
		cards[i] = models.NewCard{
			Term:       fmt.Sprintf("term %d", i+1),
			Definition: fmt.Sprintf("definition %d", i+1),
			Examples:   []string{fmt.Sprintf("example %d", i+1)},
		}
	}
	return models.NewDeck{Name: name, Cards: cards}
}

// Cards builds n cards belonging to deckID, ids "card-1".."card-n".
func Cards(deckID string, n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			ID:         fmt.Sprintf("card-%d", i+1),
			DeckID:     deckID,
			Term:       fmt.Sprintf("term %d", i+1),
			Definition: fmt.Sprintf("definition %d", i+1),
		}
	}
	return cards
}

// Deck builds a deck with n cards from Cards.
func Deck(id string, n int) *models.Deck {
	return &models.Deck{
		ID:        id,
		Name:      "Deck " + id,
		Slug:      "deck-" + id,
		Cards:     Cards(id, n),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
