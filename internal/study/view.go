package study

import (
	"errors"

	"github.com/vytor/flashdeck/internal/models"
)

var (
	ErrDeckNotFound = errors.New("deck not found")
	// ErrNothingToAnswer is returned by Answer when the session has no current item.
	ErrNothingToAnswer = errors.New("no item awaiting an answer")
	ErrInvalidResponse = errors.New("invalid response")
	ErrClosed          = errors.New("study runner closed")
)

type Mode string

const (
	// ModeFlashcard studies cards directly and the learner grades themselves.
	ModeFlashcard Mode = "flashcard"
	// ModeLearn studies generated multiple-choice and written questions.
	ModeLearn Mode = "learn"
)

func (m Mode) Valid() bool {
	return m == ModeFlashcard || m == ModeLearn
}

// Reason explains why there is no current item.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNothingDue     Reason = "nothing_due"
	ReasonNotEnoughCards Reason = "not_enough_cards"
	ReasonCompleted      Reason = "completed"
)

// Response is the learner's answer. Flashcards take Correct; questions take
// Choice or Text, with Correct as a self-graded override.
type Response struct {
	Correct *bool   `json:"correct,omitempty"`
	Text    *string `json:"text,omitempty"`
	Choice  *int    `json:"choice,omitempty"`
}

// Result is the outcome of one answer.
type Result struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
	View     View   `json:"session"`
}

// QuestionPrompt is a question as shown to the learner, without its answer.
type QuestionPrompt struct {
	ID                 string              `json:"id"`
	Type               models.QuestionType `json:"type"`
	Direction          models.Direction    `json:"direction"`
	Prompt             string              `json:"question"`
	Choices            []string            `json:"choices,omitempty"`
	TermLanguage       string              `json:"termLanguage,omitempty"`
	DefinitionLanguage string              `json:"definitionLanguage,omitempty"`
}

func promptFor(q models.Question) QuestionPrompt {
	return QuestionPrompt{
		ID:                 q.ID,
		Type:               q.Type,
		Direction:          q.Direction,
		Prompt:             q.Prompt,
		Choices:            append([]string(nil), q.Choices...),
		TermLanguage:       q.TermLanguage,
		DefinitionLanguage: q.DefinitionLanguage,
	}
}

// View is a point-in-time picture of a runner.
type View struct {
	DeckID        string  `json:"deckId"`
	DeckName      string  `json:"deckName"`
	Mode          Mode    `json:"mode"`
	IgnoreDueDate bool    `json:"ignoreDueDate"`
	State         string  `json:"state"`
	Reason        Reason  `json:"reason,omitempty"`
	Current       any     `json:"current,omitempty"`
	Total         int     `json:"total"`
	Known         int     `json:"known"`
	Skipped       int     `json:"skipped"`
	Remaining     int     `json:"remaining"`
	Retry         int     `json:"retry"`
	Pending       int     `json:"pending"`
	Progress      float64 `json:"progress"`
	Saving        bool    `json:"saving"`
	LastSaveError string  `json:"lastSaveError,omitempty"`
}
