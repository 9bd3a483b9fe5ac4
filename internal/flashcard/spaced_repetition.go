package flashcard

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// MaxIntervalDays caps how far ahead a card can be scheduled.
const MaxIntervalDays = 30

// maxGapExponent bounds the doubling so the day count stays far from overflow.
// 2^20 days is already thousands of years past any cap.
const maxGapExponent = 20

// Schedule applies one answer to a card's review state.
//
// A wrong answer resets the streak and makes the card due at now. A correct
// answer increments the streak and moves the review date 2^(streak-1) days past
// the previous review date (or now, for a card never reviewed), clamped to
// MaxIntervalDays from now.
func Schedule(state models.ReviewState, correct bool, now time.Time) models.ReviewState {
	if !correct {
		due := now
		return models.ReviewState{Streak: 0, ReviewDate: &due}
	}

	streak := max(state.Streak, 0) + 1

	base := now
	if state.ReviewDate != nil {
		base = *state.ReviewDate
	}

	next := base.AddDate(0, 0, gapDays(streak))
	if limit := now.AddDate(0, 0, MaxIntervalDays); next.After(limit) {
		next = limit
	}
	return models.ReviewState{Streak: streak, ReviewDate: &next}
}

func gapDays(streak int) int {
	exp := min(streak-1, maxGapExponent)
	return 1 << exp
}
