package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/quiz"
)

func TestShuffle_IsPermutationAndCopy(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6}
	out := quiz.Shuffle(seeded(9), in)

	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, in, "input must not be reordered")
}

func TestShuffle_Empty(t *testing.T) {
	assert.Empty(t, quiz.Shuffle(seeded(1), []string{}))
}

func TestPickDistractors_ExcludesTargetAndRepeats(t *testing.T) {
	cards := deck(6)
	target := cards[2]

	for seed := uint64(0); seed < 30; seed++ {
		got, err := quiz.PickDistractors(seeded(seed), target, cards, models.DirectionTermToDef)
		require.NoError(t, err)
		require.Len(t, got, quiz.DistractorCount)

		assert.NotContains(t, got, target.Definition)
		unique := map[string]bool{}
		for _, d := range got {
			unique[d] = true
		}
		assert.Len(t, unique, quiz.DistractorCount)
	}
}

func TestPickDistractors_DuplicateCardsInPoolCountOnce(t *testing.T) {
	cards := deck(3)
	pool := append(append([]models.Card{}, cards...), cards[1], cards[2])

	_, err := quiz.PickDistractors(seeded(1), cards[0], pool, models.DirectionTermToDef)
	assert.ErrorIs(t, err, quiz.ErrNotEnoughCards)
}

func TestPickDistractors_TooFewCandidates(t *testing.T) {
	cards := deck(3)
	_, err := quiz.PickDistractors(seeded(1), cards[0], cards, models.DirectionDefToTerm)
	assert.ErrorIs(t, err, quiz.ErrNotEnoughCards)
}
