package study

import (
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/quiz"
)

// NewFlashcardRunner studies the deck's due cards; the learner grades each one.
func NewFlashcardRunner(deckID string, source DeckSource, opts Options) *Runner[models.Card] {
	return newRunner(deckID, source, mode[models.Card]{
		name:  ModeFlashcard,
		build: buildCards,
		grade: gradeCard,
		show:  func(c models.Card) any { return c },
	}, opts)
}

// NewLearnRunner studies questions generated from the deck's due cards,
// drawing distractors from the whole deck.
func NewLearnRunner(deckID string, source DeckSource, opts Options) *Runner[models.Question] {
	return newRunner(deckID, source, mode[models.Question]{
		name:  ModeLearn,
		build: buildQuestions,
		grade: gradeQuestion,
		show:  func(q models.Question) any { return promptFor(q) },
	}, opts)
}

func buildCards(r *Runner[models.Card], deck *models.Deck) ([]models.Card, Reason) {
	due := flashcard.DueCards(deck.Cards, r.ignore, r.now())
	if len(due) == 0 {
		return due, ReasonNothingDue
	}
	return due, ReasonNone
}

func buildQuestions(r *Runner[models.Question], deck *models.Deck) ([]models.Question, Reason) {
	if len(deck.Cards) < quiz.MinAnswerPool {
		return nil, ReasonNotEnoughCards
	}
	due := flashcard.DueCards(deck.Cards, r.ignore, r.now())
	if len(due) == 0 {
		return nil, ReasonNothingDue
	}
	questions := quiz.NewGenerator(r.rng).Generate(quiz.Options{
		Cards:      due,
		AnswerPool: deck.Cards,
		Types:      r.opts.Types,
		Direction:  r.opts.Direction,
	})
	if len(questions) == 0 {
		return nil, ReasonNotEnoughCards
	}
	return questions, ReasonNone
}

func gradeCard(c models.Card, resp Response) (bool, string, error) {
	if resp.Correct == nil {
		return false, "", ErrInvalidResponse
	}
	return *resp.Correct, c.Definition, nil
}

func gradeQuestion(q models.Question, resp Response) (bool, string, error) {
	switch {
	case resp.Choice != nil && q.IsMultipleChoice():
		if *resp.Choice < 0 || *resp.Choice >= len(q.Choices) {
			return false, "", ErrInvalidResponse
		}
		return quiz.CheckChoice(q, *resp.Choice), q.CorrectAnswer, nil
	case resp.Text != nil:
		return quiz.CheckWritten(q, *resp.Text), q.CorrectAnswer, nil
	case resp.Correct != nil:
		return *resp.Correct, q.CorrectAnswer, nil
	default:
		return false, "", ErrInvalidResponse
	}
}
