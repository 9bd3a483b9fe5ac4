package models

import "time"

type Deck struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Cards       []Card     `json:"cards"`
	OpenedAt    *time.Time `json:"openedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// DeckStats counts a deck's cards by status.
type DeckStats struct {
	Total    int `json:"total"`
	Known    int `json:"known"`
	Learning int `json:"learning"`
	New      int `json:"new"`
}

// DeckSummary is the list view of a deck.
type DeckSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	OpenedAt  *time.Time `json:"openedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Stats     DeckStats  `json:"stats"`
}

// Deck list orderings.
const (
	DeckOrderRecently = "recently"
	DeckOrderNewest   = "newest"
	DeckOrderOldest   = "oldest"
	DeckOrderNameAZ   = "name_az"
	DeckOrderNameZA   = "name_za"
)

type DeckFilter struct {
	Search  string
	OrderBy string
	Limit   int
	Offset  int
}

// NewDeck is the input for creating a deck.
type NewDeck struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Cards       []NewCard `json:"cards" validate:"min=4,dive"`
}

type NewCard struct {
	Term               string   `json:"term" validate:"required"`
	TermLanguage       string   `json:"termLanguage" validate:"omitempty,oneof=en vi"`
	Definition         string   `json:"definition" validate:"required"`
	DefinitionLanguage string   `json:"definitionLanguage" validate:"omitempty,oneof=en vi"`
	Pronunciation      string   `json:"pronunciation"`
	PartOfSpeech       string   `json:"partOfSpeech"`
	UsageOrGrammar     string   `json:"usageOrGrammar"`
	Examples           []string `json:"examples"`
}
