package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Card, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ApplyAnswers(ctx context.Context, deckID string, answers []models.Answer) error {
	args := m.Called(ctx, deckID, answers)
	return args.Error(0)
}

func (m *MockCardRepository) ResetProgress(ctx context.Context, deckID string) (int64, error) {
	args := m.Called(ctx, deckID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) ExistingIDs(ctx context.Context, deckID string, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, deckID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}
