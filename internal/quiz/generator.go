package quiz

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

// MinAnswerPool is the smallest answer pool questions can be generated from:
// one correct answer plus DistractorCount distractors.
const MinAnswerPool = DistractorCount + 1

// AllTypes lists every question type.
var AllTypes = []models.QuestionType{models.QuestionMultipleChoices, models.QuestionWritten}

// Options configures one Generate call.
type Options struct {
	// Cards are the cards to ask about, in order.
	Cards []models.Card
	// AnswerPool supplies distractors. It usually holds the whole deck.
	AnswerPool []models.Card
	// Types allowed; empty means AllTypes.
	Types []models.QuestionType
	// Direction is term_to_def, def_to_term, or both (decided per card).
	Direction models.Direction
}

type Generator struct {
	rng *rand.Rand
	log *logger.Logger
}

// NewGenerator builds a generator drawing from rng. A nil rng uses a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, log: logger.Default().WithPrefix("quiz")}
}

// Generate builds one question per card. It returns an empty slice when the
// answer pool has fewer than MinAnswerPool cards; callers should report that
// as "not enough cards" rather than "nothing due".
func (g *Generator) Generate(opts Options) []models.Question {
	if len(opts.AnswerPool) < MinAnswerPool {
		g.log.Debug("answer pool too small: %d < %d", len(opts.AnswerPool), MinAnswerPool)
		return []models.Question{}
	}

	types := opts.Types
	if len(types) == 0 {
		types = AllTypes
	}

	questions := make([]models.Question, 0, len(opts.Cards))
	for _, card := range opts.Cards {
		qType := types[g.rng.IntN(len(types))]
		dir := g.resolveDirection(opts.Direction)

		q := models.Question{
			ID:                 card.ID,
			Type:               qType,
			Direction:          dir,
			Prompt:             promptText(card, dir),
			CorrectAnswer:      answerText(card, dir),
			CorrectChoiceIndex: -1,
			TermLanguage:       card.TermLanguage,
			DefinitionLanguage: card.DefinitionLanguage,
			Streak:             card.Streak,
			ReviewDate:         card.Review().ReviewDate,
		}

		if qType == models.QuestionMultipleChoices {
			distractors, err := PickDistractors(g.rng, card, opts.AnswerPool, dir)
			if err != nil {
				g.log.Debug("card %s: falling back to written question: %v", card.ID, err)
				q.Type = models.QuestionWritten
			} else {
				q.Choices = Shuffle(g.rng, append([]string{q.CorrectAnswer}, distractors...))
				q.CorrectChoiceIndex = slices.Index(q.Choices, q.CorrectAnswer)
			}
		}

		questions = append(questions, q)
	}
	return questions
}

func (g *Generator) resolveDirection(dir models.Direction) models.Direction {
	switch dir {
	case models.DirectionTermToDef, models.DirectionDefToTerm:
		return dir
	default:
		if g.rng.IntN(2) == 0 {
			return models.DirectionTermToDef
		}
		return models.DirectionDefToTerm
	}
}

// CheckWritten compares a typed response with the expected answer,
// ignoring case and surrounding whitespace.
func CheckWritten(q models.Question, response string) bool {
	return strings.EqualFold(strings.TrimSpace(response), strings.TrimSpace(q.CorrectAnswer))
}

// CheckChoice reports whether choice is the correct index of a multiple-choice question.
func CheckChoice(q models.Question, choice int) bool {
	return q.IsMultipleChoice() && choice == q.CorrectChoiceIndex
}
