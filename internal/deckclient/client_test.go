package deckclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetDeck(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/decks/d1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.Deck{
			ID:    "d1",
			Name:  "Verbs",
			Cards: []models.Card{{ID: "c1", Term: "ser", Definition: "to be"}},
		})
	})

	deck, err := c.GetDeck(context.Background(), "d1")
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, "Verbs", deck.Name)
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, "to be", deck.Cards[0].Definition)
}

func TestGetDeck_NotFound(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "deck not found: nope"},
		})
	})

	deck, err := c.GetDeck(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, deck)
}

func TestSaveAnswers(t *testing.T) {
	review := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	var got saveAnswersBody
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/study/save-answer/d1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	answers := []models.Answer{{ID: "c1", Streak: 2, ReviewDate: &review}}
	require.NoError(t, c.SaveAnswers(context.Background(), "d1", answers))
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "c1", got.Answers[0].ID)
	assert.True(t, got.Answers[0].ReviewDate.Equal(review))
}

func TestSaveAnswers_ValidationError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{"code": "VALIDATION_ERROR", "message": "unknown card ids: ghost"},
		})
	})

	err := c.SaveAnswers(context.Background(), "d1", []models.Answer{{ID: "ghost"}})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "unknown card ids: ghost", appErr.Message)
}

func TestRestartDeck(t *testing.T) {
	called := false
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/decks/restart/d1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.RestartDeck(context.Background(), "d1"))
	assert.True(t, called)
}

func TestStats(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/decks/d1/stats", r.URL.Path)
		writeJSON(w, http.StatusOK, models.DeckStats{Total: 5, Known: 2, Learning: 1, New: 2})
	})

	stats, err := c.Stats(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DeckStats{Total: 5, Known: 2, Learning: 1, New: 2}, *stats)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Stats(context.Background(), "d1")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnavailable, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, "")

	err := c.RestartDeck(context.Background(), "d1")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnavailable, appErr.Code)
}

func TestNoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.DeckStats{})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Stats(context.Background(), "d1")
	require.NoError(t, err)
}
