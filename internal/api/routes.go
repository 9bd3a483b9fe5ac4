package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/errors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
		r.Get("/decks/{id}", s.handleGetDeck)
		r.Get("/decks/{id}/stats", s.handleDeckStats)
		r.Post("/decks/restart/{id}", s.handleRestartDeck)
		r.Post("/study/save-answer/{id}", s.handleSaveAnswers)

		r.Post("/decks/{id}/sessions", s.handleStartSession)
		r.Get("/sessions/{sid}", s.handleGetSession)
		r.Delete("/sessions/{sid}", s.handleEndSession)
		r.Post("/sessions/{sid}/answer", s.handleAnswer)
		r.Post("/sessions/{sid}/shuffle", s.handleShuffle)
		r.Post("/sessions/{sid}/ignore-due-date", s.handleIgnoreDueDate)
		r.Post("/sessions/{sid}/restart", s.handleRestartSession)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})
	return r
}
