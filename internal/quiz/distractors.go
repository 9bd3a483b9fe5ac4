package quiz

import (
	"errors"
	"math/rand/v2"

	"github.com/vytor/flashdeck/internal/models"
)

// DistractorCount is the number of wrong choices in a multiple-choice question.
const DistractorCount = 3

// ErrNotEnoughCards is returned when the pool cannot supply enough distinct distractors.
var ErrNotEnoughCards = errors.New("quiz: not enough cards to pick distractors")

// Shuffle returns a uniformly shuffled copy of items (Fisher-Yates).
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PickDistractors selects DistractorCount wrong answers for target from pool.
//
// The pool is shuffled and walked in order; the target and any card already
// used are skipped, as are candidates whose answer text would duplicate the
// correct answer or an earlier distractor. For DirectionTermToDef the
// distractors are definitions, otherwise terms.
func PickDistractors(rng *rand.Rand, target models.Card, pool []models.Card, dir models.Direction) ([]string, error) {
	correct := answerText(target, dir)
	seenIDs := map[string]bool{target.ID: true}
	seenText := map[string]bool{correct: true}

	out := make([]string, 0, DistractorCount)
	for _, c := range Shuffle(rng, pool) {
		if len(out) == DistractorCount {
			break
		}
		text := answerText(c, dir)
		if seenIDs[c.ID] || seenText[text] {
			continue
		}
		seenIDs[c.ID] = true
		seenText[text] = true
		out = append(out, text)
	}

	if len(out) < DistractorCount {
		return nil, ErrNotEnoughCards
	}
	return out, nil
}

func promptText(c models.Card, dir models.Direction) string {
	if dir == models.DirectionTermToDef {
		return c.Term
	}
	return c.Definition
}

func answerText(c models.Card, dir models.Direction) string {
	if dir == models.DirectionTermToDef {
		return c.Definition
	}
	return c.Term
}
