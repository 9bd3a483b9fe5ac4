package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/study"
)

type sessionResponse struct {
	ID   string     `json:"id"`
	View study.View `json:"session"`
}

type ignoreDueDateRequest struct {
	Ignore *bool `json:"ignore"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "id")
	var opts models.StudyOptions
	if err := decodeJSON(r, &opts); err != nil {
		handleError(w, r, err)
		return
	}

	id, view, err := s.StudyService.Start(r.Context(), deckID, opts)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("session %s started for deck %s", id, deckID)
	writeJSON(w, r, http.StatusCreated, sessionResponse{ID: id, View: view})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	view, err := s.StudyService.View(r.Context(), sid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{ID: sid, View: view})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.End(r.Context(), chi.URLParam(r, "sid")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var resp study.Response
	if err := decodeJSON(r, &resp); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.StudyService.Answer(r.Context(), chi.URLParam(r, "sid"), resp)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	view, err := s.StudyService.Shuffle(r.Context(), sid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{ID: sid, View: view})
}

func (s *Server) handleIgnoreDueDate(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	var req ignoreDueDateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Ignore == nil {
		handleError(w, r, errors.NewValidationError("ignore", "required"))
		return
	}

	view, err := s.StudyService.SetIgnoreDueDate(r.Context(), sid, *req.Ignore)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{ID: sid, View: view})
}

func (s *Server) handleRestartSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	view, err := s.StudyService.Restart(r.Context(), sid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{ID: sid, View: view})
}
