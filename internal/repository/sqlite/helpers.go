package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

// Helper functions shared across repository implementations

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var cardColumns = []string{
	"id", "deck_id", "term", "term_language", "definition", "definition_language",
	"pronunciation", "part_of_speech", "usage_or_grammar", "examples", "streak", "review_date",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var c models.Card
	var examples string
	err := row.Scan(&c.ID, &c.DeckID, &c.Term, &c.TermLanguage, &c.Definition, &c.DefinitionLanguage,
		&c.Pronunciation, &c.PartOfSpeech, &c.UsageOrGrammar, &examples, &c.Streak, &c.ReviewDate)
	if err != nil {
		return c, err
	}
	c.Examples, err = decodeExamples(examples)
	return c, err
}

func encodeExamples(examples []string) (string, error) {
	if examples == nil {
		examples = []string{}
	}
	b, err := json.Marshal(examples)
	return string(b), err
}

func decodeExamples(raw string) ([]string, error) {
	examples := []string{}
	if raw == "" {
		return examples, nil
	}
	err := json.Unmarshal([]byte(raw), &examples)
	return examples, err
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
