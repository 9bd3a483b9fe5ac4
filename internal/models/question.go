package models

import (
	"slices"
	"time"
)

type QuestionType string

const (
	QuestionMultipleChoices QuestionType = "multiple_choices"
	QuestionWritten         QuestionType = "written"
)

// Direction selects which side of a card is the prompt.
type Direction string

const (
	DirectionTermToDef Direction = "term_to_def"
	DirectionDefToTerm Direction = "def_to_term"
	// DirectionBoth is only valid as a generator setting; each question
	// resolves it to one of the two concrete directions.
	DirectionBoth Direction = "both"
)

// Question is generated from a card and lives only for one study session.
// It carries the card's scheduling state so answers can be rescheduled
// without going back to the deck.
type Question struct {
	ID                 string       `json:"id"`
	Type               QuestionType `json:"type"`
	Direction          Direction    `json:"direction"`
	Prompt             string       `json:"question"`
	CorrectAnswer      string       `json:"correctAnswer"`
	Choices            []string     `json:"choices,omitempty"`
	CorrectChoiceIndex int          `json:"correctChoiceIndex"`
	TermLanguage       string       `json:"termLanguage"`
	DefinitionLanguage string       `json:"definitionLanguage"`
	Streak             int          `json:"streak"`
	ReviewDate         *time.Time   `json:"reviewDate,omitempty"`
}

func (q Question) Key() string { return q.ID }

func (q Question) Review() ReviewState {
	return ReviewState{Streak: q.Streak, ReviewDate: cloneTime(q.ReviewDate)}
}

func (q Question) WithReview(r ReviewState) Question {
	out := q.Clone()
	out.Streak = r.Streak
	out.ReviewDate = cloneTime(r.ReviewDate)
	return out
}

func (q Question) Clone() Question {
	out := q
	out.Choices = slices.Clone(q.Choices)
	out.ReviewDate = cloneTime(q.ReviewDate)
	return out
}

// IsMultipleChoice reports whether the question offers choices.
func (q Question) IsMultipleChoice() bool {
	return q.Type == QuestionMultipleChoices && len(q.Choices) > 0
}
