package flashcard

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// Status classifies a card by its review date.
func Status(reviewDate *time.Time, now time.Time) models.CardStatus {
	switch {
	case reviewDate == nil:
		return models.StatusNew
	case reviewDate.After(now):
		return models.StatusKnown
	default:
		return models.StatusLearning
	}
}

// IsDue reports whether a card can be studied at now.
func IsDue(c models.Card, now time.Time) bool {
	return Status(c.ReviewDate, now) != models.StatusKnown
}

// DueCards returns copies of the cards eligible for study, in input order.
// With ignoreDueDate every card is returned.
func DueCards(cards []models.Card, ignoreDueDate bool, now time.Time) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if ignoreDueDate || IsDue(c, now) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// WithStatus returns copies of the cards with Status filled in.
func WithStatus(cards []models.Card, now time.Time) []models.Card {
	out := models.CloneCards(cards)
	for i := range out {
		out[i].Status = Status(out[i].ReviewDate, now)
	}
	return out
}

// Stats counts cards per status.
func Stats(cards []models.Card, now time.Time) models.DeckStats {
	stats := models.DeckStats{Total: len(cards)}
	for _, c := range cards {
		switch Status(c.ReviewDate, now) {
		case models.StatusNew:
			stats.New++
		case models.StatusLearning:
			stats.Learning++
		case models.StatusKnown:
			stats.Known++
		}
	}
	return stats
}
