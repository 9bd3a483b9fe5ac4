package models

import (
	"slices"
	"time"
)

// CardStatus is derived from a card's review date and never stored.
type CardStatus string

const (
	StatusNew      CardStatus = "new"
	StatusLearning CardStatus = "learning"
	StatusKnown    CardStatus = "known"
)

// ReviewState is the scheduling state of a card.
// A nil ReviewDate means the card has never been reviewed.
type ReviewState struct {
	Streak     int        `json:"streak"`
	ReviewDate *time.Time `json:"reviewDate,omitempty"`
}

type Card struct {
	ID                 string     `json:"id"`
	DeckID             string     `json:"-"`
	Term               string     `json:"term"`
	TermLanguage       string     `json:"termLanguage"`
	Definition         string     `json:"definition"`
	DefinitionLanguage string     `json:"definitionLanguage"`
	Pronunciation      string     `json:"pronunciation,omitempty"`
	PartOfSpeech       string     `json:"partOfSpeech,omitempty"`
	UsageOrGrammar     string     `json:"usageOrGrammar,omitempty"`
	Examples           []string   `json:"examples"`
	Streak             int        `json:"streak"`
	ReviewDate         *time.Time `json:"reviewDate,omitempty"`
	Status             CardStatus `json:"status,omitempty"`
}

// Key identifies the card inside a study session.
func (c Card) Key() string { return c.ID }

// Review returns the card's scheduling state.
func (c Card) Review() ReviewState {
	return ReviewState{Streak: c.Streak, ReviewDate: cloneTime(c.ReviewDate)}
}

// WithReview returns a copy of the card carrying the given scheduling state.
func (c Card) WithReview(r ReviewState) Card {
	out := c.Clone()
	out.Streak = r.Streak
	out.ReviewDate = cloneTime(r.ReviewDate)
	return out
}

// Clone returns a deep copy; the result shares no slices or pointers with c.
func (c Card) Clone() Card {
	out := c
	out.Examples = slices.Clone(c.Examples)
	out.ReviewDate = cloneTime(c.ReviewDate)
	return out
}

// CloneCards deep-copies a card slice.
func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
