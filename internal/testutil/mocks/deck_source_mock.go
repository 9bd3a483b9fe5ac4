package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockDeckSource is a mock implementation of study.DeckSource
type MockDeckSource struct {
	mock.Mock
}

func (m *MockDeckSource) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockDeckSource) SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error {
	args := m.Called(ctx, deckID, answers)
	return args.Error(0)
}

func (m *MockDeckSource) RestartDeck(ctx context.Context, deckID string) error {
	args := m.Called(ctx, deckID)
	return args.Error(0)
}
