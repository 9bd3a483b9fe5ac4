package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckRepositorySuite) createDeck(id, name string, createdAt time.Time) models.Deck {
	d := *testutil.Deck(id, 4)
	d.Name = name
	d.CreatedAt = createdAt
	for i := range d.Cards {
		d.Cards[i].ID = id + "-" + d.Cards[i].ID
	}
	s.Require().NoError(s.repo.Create(context.Background(), d))
	return d
}

func (s *DeckRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	reviewed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	d := *testutil.Deck("d1", 4)
	d.Description = "verbs"
	d.Cards[0].Examples = []string{"one", "two"}
	d.Cards[1].Streak = 3
	d.Cards[1].ReviewDate = &reviewed
	s.Require().NoError(s.repo.Create(ctx, d))

	got, err := s.repo.Get(ctx, "d1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("Deck d1", got.Name)
	s.Assert().Equal("deck-d1", got.Slug)
	s.Assert().Equal("verbs", got.Description)
	s.Assert().Nil(got.OpenedAt)

	s.Require().Len(got.Cards, 4)
	for i, c := range got.Cards {
		s.Assert().Equal(d.Cards[i].ID, c.ID, "cards keep their position order")
		s.Assert().Equal("d1", c.DeckID)
	}
	s.Assert().Equal([]string{"one", "two"}, got.Cards[0].Examples)
	s.Assert().Equal([]string{}, got.Cards[2].Examples)
	s.Assert().Equal(3, got.Cards[1].Streak)
	s.Require().NotNil(got.Cards[1].ReviewDate)
	s.Assert().True(got.Cards[1].ReviewDate.Equal(reviewed))
	s.Assert().Nil(got.Cards[0].ReviewDate)
}

func (s *DeckRepositorySuite) TestGet_NotFound() {
	got, err := s.repo.Get(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *DeckRepositorySuite) TestCreate_DuplicateSlugRollsBack() {
	ctx := context.Background()
	s.createDeck("d1", "First", time.Now())

	dup := *testutil.Deck("d2", 4)
	dup.Slug = "deck-d1"
	for i := range dup.Cards {
		dup.Cards[i].ID = "d2-" + dup.Cards[i].ID
	}
	s.Require().Error(s.repo.Create(ctx, dup))

	var n int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE deck_id = 'd2'`).Scan(&n))
	s.Assert().Zero(n)
}

func (s *DeckRepositorySuite) TestList_OrderAndSearch() {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.createDeck("a", "banana words", base)
	s.createDeck("b", "Apple words", base.Add(time.Hour))
	s.createDeck("c", "cherry", base.Add(2*time.Hour))

	ids := func(decks []models.Deck) []string {
		out := make([]string, len(decks))
		for i, d := range decks {
			out[i] = d.ID
		}
		return out
	}

	newest, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderNewest})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"c", "b", "a"}, ids(newest))

	oldest, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderOldest})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"a", "b", "c"}, ids(oldest))

	az, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderNameAZ})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"b", "a", "c"}, ids(az))

	za, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderNameZA})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"c", "a", "b"}, ids(za))

	found, err := s.repo.List(ctx, models.DeckFilter{Search: "words"})
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"a", "b"}, ids(found))
	for _, d := range found {
		s.Assert().Len(d.Cards, 4)
	}

	page, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderOldest, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"b"}, ids(page))
}

func (s *DeckRepositorySuite) TestList_RecentlyOpenedFirst() {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.createDeck("a", "a", base)
	s.createDeck("b", "b", base.Add(time.Hour))

	s.Require().NoError(s.repo.MarkOpened(ctx, "a", base.Add(48*time.Hour)))

	decks, err := s.repo.List(ctx, models.DeckFilter{OrderBy: models.DeckOrderRecently})
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Assert().Equal("a", decks[0].ID)
	s.Require().NotNil(decks[0].OpenedAt)
	s.Assert().True(decks[0].OpenedAt.Equal(base.Add(48 * time.Hour)))
}

func (s *DeckRepositorySuite) TestSlugExistsAndDelete() {
	ctx := context.Background()
	s.createDeck("d1", "First", time.Now())

	exists, err := s.repo.SlugExists(ctx, "deck-d1")
	s.Require().NoError(err)
	s.Assert().True(exists)

	s.Require().NoError(s.repo.Delete(ctx, "d1"))

	exists, err = s.repo.SlugExists(ctx, "deck-d1")
	s.Require().NoError(err)
	s.Assert().False(exists)

	var n int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n))
	s.Assert().Zero(n, "cards are deleted with their deck")
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
