package models

import (
	"slices"
	"time"
)

// Answer is the scheduling delta persisted for one card after it is studied.
type Answer struct {
	ID         string     `json:"id" validate:"required"`
	Streak     int        `json:"streak" validate:"gte=0"`
	ReviewDate *time.Time `json:"reviewDate,omitempty"`
}

// AnswerFor builds the answer for an item with the given key and state.
func AnswerFor(id string, r ReviewState) Answer {
	return Answer{ID: id, Streak: r.Streak, ReviewDate: cloneTime(r.ReviewDate)}
}

// Same reports whether two answers carry the same id and scheduling state.
func (a Answer) Same(b Answer) bool {
	if a.ID != b.ID || a.Streak != b.Streak {
		return false
	}
	switch {
	case a.ReviewDate == nil && b.ReviewDate == nil:
		return true
	case a.ReviewDate == nil || b.ReviewDate == nil:
		return false
	default:
		return a.ReviewDate.Equal(*b.ReviewDate)
	}
}

// AnswerBatch is an ordered set of unsaved answers holding at most one
// entry per card id. Methods never modify the receiver.
type AnswerBatch struct {
	items []Answer
}

// Upsert replaces the entry with the same id in place, or appends a new one.
func (b AnswerBatch) Upsert(a Answer) AnswerBatch {
	items := slices.Clone(b.items)
	if i := slices.IndexFunc(items, func(x Answer) bool { return x.ID == a.ID }); i >= 0 {
		items[i] = a
	} else {
		items = append(items, a)
	}
	return AnswerBatch{items: items}
}

// Settle drops the entries that were persisted in saved. An entry whose id is
// in saved but whose value changed since the snapshot was taken is kept, so
// an answer recorded while a save was in flight is not lost.
func (b AnswerBatch) Settle(saved []Answer) AnswerBatch {
	if len(saved) == 0 || len(b.items) == 0 {
		return b
	}
	kept := make([]Answer, 0, len(b.items))
	for _, a := range b.items {
		persisted := slices.ContainsFunc(saved, func(s Answer) bool { return s.Same(a) })
		if !persisted {
			kept = append(kept, a)
		}
	}
	return AnswerBatch{items: kept}
}

// Answers returns a copy of the pending answers in insertion order.
func (b AnswerBatch) Answers() []Answer {
	return slices.Clone(b.items)
}

func (b AnswerBatch) Len() int { return len(b.items) }
