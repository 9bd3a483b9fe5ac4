package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestSchedule_IncorrectResetsStreak(t *testing.T) {
	for _, streak := range []int{0, 1, 5, 40} {
		state := models.ReviewState{Streak: streak, ReviewDate: ptr(now.AddDate(0, 0, 10))}

		updated := flashcard.Schedule(state, false, now)

		assert.Equal(t, 0, updated.Streak, "streak should reset for streak=%d", streak)
		require.NotNil(t, updated.ReviewDate)
		assert.True(t, updated.ReviewDate.Equal(now), "card should be due immediately")
	}
}

func TestSchedule_FirstCorrectAnswerIsOneDay(t *testing.T) {
	updated := flashcard.Schedule(models.ReviewState{}, true, now)

	assert.Equal(t, 1, updated.Streak)
	require.NotNil(t, updated.ReviewDate)
	assert.True(t, updated.ReviewDate.Equal(now.AddDate(0, 0, 1)), "first correct answer should schedule one day out, got %v", updated.ReviewDate)
}

func TestSchedule_ExponentialBackoff(t *testing.T) {
	tests := []struct {
		name     string
		streak   int
		expected int // days after base
	}{
		{name: "streak 0 becomes 1 day", streak: 0, expected: 1},
		{name: "streak 1 becomes 2 days", streak: 1, expected: 2},
		{name: "streak 2 becomes 4 days", streak: 2, expected: 4},
		{name: "streak 3 becomes 8 days", streak: 3, expected: 8},
		{name: "streak 4 becomes 16 days", streak: 4, expected: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := now.AddDate(0, 0, -1)
			state := models.ReviewState{Streak: tt.streak, ReviewDate: ptr(base)}

			updated := flashcard.Schedule(state, true, now)

			assert.Equal(t, tt.streak+1, updated.Streak)
			assert.True(t, updated.ReviewDate.Equal(base.AddDate(0, 0, tt.expected)),
				"expected %v, got %v", base.AddDate(0, 0, tt.expected), updated.ReviewDate)
		})
	}
}

func TestSchedule_CapsAtThirtyDays(t *testing.T) {
	limit := now.AddDate(0, 0, flashcard.MaxIntervalDays)

	for streak := 0; streak <= 100; streak++ {
		state := models.ReviewState{Streak: streak, ReviewDate: ptr(now)}
		updated := flashcard.Schedule(state, true, now)

		assert.Equal(t, streak+1, updated.Streak)
		assert.False(t, updated.ReviewDate.After(limit), "streak=%d scheduled past the cap: %v", streak, updated.ReviewDate)
	}

	updated := flashcard.Schedule(models.ReviewState{Streak: 5, ReviewDate: ptr(now)}, true, now)
	assert.True(t, updated.ReviewDate.Equal(limit), "32-day gap should clamp to the cap")
}

func TestSchedule_UsesPreviousReviewDateAsBase(t *testing.T) {
	// A card reviewed long ago still grows from its old date, not from now.
	old := now.AddDate(0, 0, -60)
	updated := flashcard.Schedule(models.ReviewState{Streak: 5, ReviewDate: ptr(old)}, true, now)

	assert.True(t, updated.ReviewDate.Equal(old.AddDate(0, 0, 32)))
	assert.True(t, updated.ReviewDate.Before(now))
}

func TestSchedule_NegativeStreakTreatedAsZero(t *testing.T) {
	updated := flashcard.Schedule(models.ReviewState{Streak: -3}, true, now)
	assert.Equal(t, 1, updated.Streak)
}

func TestSchedule_DoesNotMutateInput(t *testing.T) {
	original := now.AddDate(0, 0, -2)
	state := models.ReviewState{Streak: 2, ReviewDate: ptr(original)}

	_ = flashcard.Schedule(state, true, now)

	assert.True(t, state.ReviewDate.Equal(original))
	assert.Equal(t, 2, state.Streak)
}

func TestSchedule_Deterministic(t *testing.T) {
	state := models.ReviewState{Streak: 3, ReviewDate: ptr(now.AddDate(0, 0, -3))}
	a := flashcard.Schedule(state, true, now)
	b := flashcard.Schedule(state, true, now)
	assert.Equal(t, a.Streak, b.Streak)
	assert.True(t, a.ReviewDate.Equal(*b.ReviewDate))
}
