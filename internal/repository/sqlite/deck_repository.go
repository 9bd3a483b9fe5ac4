package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Create(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("creating deck: id=%s, slug=%s, cards=%d", d.ID, d.Slug, len(d.Cards))

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := sqlBuilder.Insert("decks").
			Columns("id", "name", "slug", "description", "created_at").
			Values(d.ID, d.Name, d.Slug, d.Description, createdAt).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to insert deck: %v", err)
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO cards (
    id, deck_id, position, term, term_language, definition, definition_language,
    pronunciation, part_of_speech, usage_or_grammar, examples, streak, review_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare card insert: %v", err)
			return err
		}
		defer stmt.Close()

		for i, c := range d.Cards {
			examples, err := encodeExamples(c.Examples)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, c.ID, d.ID, i, c.Term, c.TermLanguage, c.Definition, c.DefinitionLanguage,
				c.Pronunciation, c.PartOfSpeech, c.UsageOrGrammar, examples, max(c.Streak, 0), c.ReviewDate); err != nil {
				log.Error("failed to insert card id=%s: %v", c.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug("deck created: id=%s", d.ID)
	return nil
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%s", id)

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, slug, description, opened_at, created_at
FROM decks
WHERE id = ?
`, id).Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.OpenedAt, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}

	byDeck, err := cardsForDecks(ctx, r.db, []string{id})
	if err != nil {
		log.Error("failed to load cards: %v", err)
		return nil, err
	}
	d.Cards = byDeck[id]
	if d.Cards == nil {
		d.Cards = []models.Card{}
	}
	log.Debug("deck found: name=%s, cards=%d", d.Name, len(d.Cards))
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks with filter: search=%s, order=%s, limit=%d, offset=%d",
		filter.Search, filter.OrderBy, filter.Limit, filter.Offset)

	query := sqlBuilder.Select("id", "name", "slug", "description", "opened_at", "created_at").From("decks")

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"name": pattern},
			squirrel.Like{"description": pattern},
		})
	}

	// Safe ORDER BY with validation
	switch filter.OrderBy {
	case models.DeckOrderNewest:
		query = query.OrderBy("created_at DESC", "id")
	case models.DeckOrderOldest:
		query = query.OrderBy("created_at ASC", "id")
	case models.DeckOrderNameAZ:
		query = query.OrderBy("name COLLATE NOCASE ASC", "id")
	case models.DeckOrderNameZA:
		query = query.OrderBy("name COLLATE NOCASE DESC", "id")
	default:
		query = query.OrderBy("COALESCE(opened_at, created_at) DESC", "id")
	}

	// Pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	var ids []string
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.OpenedAt, &d.CreatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byDeck, err := cardsForDecks(ctx, r.db, ids)
	if err != nil {
		log.Error("failed to load cards: %v", err)
		return nil, err
	}
	for i := range decks {
		decks[i].Cards = byDeck[decks[i].ID]
		if decks[i].Cards == nil {
			decks[i].Cards = []models.Card{}
		}
	}

	log.Debug("found %d decks", len(decks))
	return decks, nil
}

func (r *deckRepository) MarkOpened(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("marking deck opened: id=%s", id)

	_, err := r.db.ExecContext(ctx, `UPDATE decks SET opened_at = ? WHERE id = ?`, at, id)
	if err != nil {
		log.Error("failed to mark deck opened: %v", err)
	}
	return err
}

func (r *deckRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		log.Error("failed to check slug: %v", err)
		return false, err
	}
	return n > 0, nil
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
	}
	return err
}
