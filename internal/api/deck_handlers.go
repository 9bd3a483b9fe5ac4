package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

var deckOrders = map[string]bool{
	models.DeckOrderRecently: true,
	models.DeckOrderNewest:   true,
	models.DeckOrderOldest:   true,
	models.DeckOrderNameAZ:   true,
	models.DeckOrderNameZA:   true,
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DeckFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		OrderBy: q.Get("order_by"),
	}
	if filter.OrderBy != "" && !deckOrders[filter.OrderBy] {
		handleError(w, r, errors.NewValidationError("order_by", "unknown ordering "+filter.OrderBy))
		return
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, err)
		return
	}

	decks, err := s.DeckService.ListDecks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var in models.NewDeck
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeckStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DeckService.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleSaveAnswers(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "id")
	var req models.SaveAnswersRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.SaveAnswers(r.Context(), deckID, req.Answers); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("stored %d answers for deck %s", len(req.Answers), deckID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestartDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.DeckService.RestartDeck(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
