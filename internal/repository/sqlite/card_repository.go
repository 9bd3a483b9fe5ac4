package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%s", deckID)

	byDeck, err := cardsForDecks(ctx, r.db, []string{deckID})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	cards := byDeck[deckID]
	if cards == nil {
		cards = []models.Card{}
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *cardRepository) ApplyAnswers(ctx context.Context, deckID string, answers []models.Answer) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("applying %d answers: deck_id=%s", len(answers), deckID)

	if len(answers) == 0 {
		return nil
	}

	var updated int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range answers {
			query, args, err := sqlBuilder.Update("cards").
				Set("streak", max(a.Streak, 0)).
				Set("review_date", a.ReviewDate).
				Where(squirrel.Eq{"id": a.ID, "deck_id": deckID}).
				ToSql()
			if err != nil {
				log.Error("failed to build update: %v", err)
				return err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				log.Error("failed to update card id=%s: %v", a.ID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				updated += n
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug("answers applied, %d cards updated", updated)
	return nil
}

func (r *cardRepository) ResetProgress(ctx context.Context, deckID string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("resetting progress: deck_id=%s", deckID)

	query, args, err := sqlBuilder.Update("cards").
		Set("streak", 0).
		Set("review_date", nil).
		Where(squirrel.Eq{"deck_id": deckID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to reset progress: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("progress reset for %d cards", n)
	return n, nil
}

func (r *cardRepository) ExistingIDs(ctx context.Context, deckID string, ids []string) (map[string]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("checking %d card ids: deck_id=%s", len(ids), deckID)

	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query, args, err := sqlBuilder.Select("id").From("cards").
		Where(squirrel.Eq{"deck_id": deckID, "id": ids}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query card ids: %v", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// cardsForDecks loads the cards of every deck in deckIDs, keyed by deck id,
// each list in position order.
func cardsForDecks(ctx context.Context, q queryer, deckIDs []string) (map[string][]models.Card, error) {
	byDeck := make(map[string][]models.Card, len(deckIDs))
	if len(deckIDs) == 0 {
		return byDeck, nil
	}

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"deck_id": deckIDs}).
		OrderBy("deck_id", "position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c)
	}
	return byDeck, rows.Err()
}
