package study

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/testutil"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// memorySource is a DeckSource over one in-memory deck.
type memorySource struct {
	mu       sync.Mutex
	deck     *models.Deck
	saves    [][]models.Answer
	restarts int
}

func newMemorySource(n int) *memorySource {
	return &memorySource{deck: testutil.Deck("d1", n)}
}

func (s *memorySource) GetDeck(_ context.Context, id string) (*models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.deck.ID {
		return nil, nil
	}
	d := *s.deck
	d.Cards = models.CloneCards(s.deck.Cards)
	return &d, nil
}

func (s *memorySource) SaveAnswers(_ context.Context, _ string, answers []models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, answers)
	for _, a := range answers {
		for i := range s.deck.Cards {
			if s.deck.Cards[i].ID == a.ID {
				s.deck.Cards[i] = s.deck.Cards[i].WithReview(models.ReviewState{Streak: a.Streak, ReviewDate: a.ReviewDate})
			}
		}
	}
	return nil
}

func (s *memorySource) RestartDeck(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts++
	for i := range s.deck.Cards {
		s.deck.Cards[i] = s.deck.Cards[i].WithReview(models.ReviewState{})
	}
	return nil
}

func (s *memorySource) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func opts(mode Mode) Options {
	return Options{
		Mode:        mode,
		QuietPeriod: time.Hour,
		Now:         func() time.Time { return now },
		Rand:        rand.New(rand.NewPCG(1, 2)),
	}
}

func graded(correct bool) Response {
	return Response{Correct: &correct}
}

func yes() Response { return graded(true) }
func no() Response  { return graded(false) }

func TestFlashcardRunner_StartsWithDueCards(t *testing.T) {
	src := newMemorySource(5)
	src.deck.Cards[4].ReviewDate = testutil.TimePtr(now.Add(24 * time.Hour))

	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	require.NoError(t, r.Start(context.Background()))

	v := r.View()
	assert.Equal(t, "active", v.State)
	assert.Equal(t, 4, v.Total, "known card is not due")
	assert.Equal(t, 3, v.Remaining)
	assert.Equal(t, "Deck d1", v.DeckName)
	card, ok := v.Current.(models.Card)
	require.True(t, ok)
	assert.Equal(t, "card-1", card.ID)
}

func TestFlashcardRunner_CompletionFlushes(t *testing.T) {
	src := newMemorySource(4)
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	var res Result
	var err error
	for i := 0; i < 4; i++ {
		res, err = r.Answer(ctx, yes())
		require.NoError(t, err)
	}

	assert.True(t, res.Correct)
	assert.Equal(t, ReasonCompleted, res.View.Reason)
	assert.Equal(t, 4, res.View.Known)
	assert.Zero(t, res.View.Pending)
	require.Equal(t, 1, src.saveCount())
	assert.Len(t, src.saves[0], 4)
	assert.Equal(t, 1, src.deck.Cards[0].Streak)

	_, err = r.Answer(ctx, yes())
	assert.ErrorIs(t, err, ErrNothingToAnswer)
}

func TestFlashcardRunner_NothingDue(t *testing.T) {
	src := newMemorySource(2)
	for i := range src.deck.Cards {
		src.deck.Cards[i].ReviewDate = testutil.TimePtr(now.Add(time.Hour))
	}
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	require.NoError(t, r.Start(context.Background()))

	v := r.View()
	assert.Equal(t, "empty", v.State)
	assert.Equal(t, ReasonNothingDue, v.Reason)
	assert.Nil(t, v.Current)
}

func TestRunner_DeckNotFound(t *testing.T) {
	r := NewFlashcardRunner("missing", newMemorySource(4), opts(ModeFlashcard))
	assert.ErrorIs(t, r.Start(context.Background()), ErrDeckNotFound)
}

func TestRunner_InvalidResponse(t *testing.T) {
	r := NewFlashcardRunner("d1", newMemorySource(4), opts(ModeFlashcard))
	require.NoError(t, r.Start(context.Background()))

	_, err := r.Answer(context.Background(), Response{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Zero(t, r.View().Pending)
}

func TestLearnRunner_NotEnoughCards(t *testing.T) {
	r := NewLearnRunner("d1", newMemorySource(3), opts(ModeLearn))
	require.NoError(t, r.Start(context.Background()))

	v := r.View()
	assert.Equal(t, ReasonNotEnoughCards, v.Reason)
	assert.Equal(t, "empty", v.State)
}

func TestLearnRunner_MultipleChoice(t *testing.T) {
	o := opts(ModeLearn)
	o.Types = []models.QuestionType{models.QuestionMultipleChoices}
	o.Direction = models.DirectionTermToDef
	r := NewLearnRunner("d1", newMemorySource(5), o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	v := r.View()
	prompt, ok := v.Current.(QuestionPrompt)
	require.True(t, ok)
	assert.Equal(t, "card-1", prompt.ID)
	assert.Equal(t, "term 1", prompt.Prompt)
	assert.Len(t, prompt.Choices, 4)

	r.mu.Lock()
	q, _ := r.sess.Current()
	r.mu.Unlock()

	choice := q.CorrectChoiceIndex
	res, err := r.Answer(ctx, Response{Choice: &choice})
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "definition 1", res.Expected)

	wrong := (q.CorrectChoiceIndex + 1) % 4
	res, err = r.Answer(ctx, Response{Choice: &wrong})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.View.Known)
	assert.Equal(t, 1, res.View.Skipped)

	bad := 9
	_, err = r.Answer(ctx, Response{Choice: &bad})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestLearnRunner_WrittenAnswer(t *testing.T) {
	o := opts(ModeLearn)
	o.Types = []models.QuestionType{models.QuestionWritten}
	o.Direction = models.DirectionDefToTerm
	r := NewLearnRunner("d1", newMemorySource(4), o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	text := " TERM 1 "
	res, err := r.Answer(ctx, Response{Text: &text})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	text = "nope"
	res, err = r.Answer(ctx, Response{Text: &text})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "term 2", res.Expected)
	assert.Equal(t, 1, res.View.Retry)
}

func TestRunner_SetIgnoreDueDate(t *testing.T) {
	src := newMemorySource(4)
	src.deck.Cards[0].ReviewDate = testutil.TimePtr(now.Add(time.Hour))
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	assert.Equal(t, 3, r.View().Total)

	_, err := r.Answer(ctx, no())
	require.NoError(t, err)

	require.NoError(t, r.SetIgnoreDueDate(ctx, true))
	v := r.View()
	assert.True(t, v.IgnoreDueDate)
	assert.Equal(t, 4, v.Total)
	assert.Zero(t, v.Pending)
	assert.Equal(t, 1, src.saveCount(), "pending answers are flushed before the reset")
}

func TestRunner_SetIgnoreDueDate_FlushFailureKeepsSession(t *testing.T) {
	src := &mocks.MockDeckSource{}
	src.On("GetDeck", mock.Anything, "d1").Return(testutil.Deck("d1", 4), nil).Once()
	src.On("SaveAnswers", mock.Anything, "d1", mock.Anything).Return(errors.New("offline"))

	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	_, err := r.Answer(ctx, yes())
	require.NoError(t, err)

	err = r.SetIgnoreDueDate(ctx, true)
	require.Error(t, err)

	v := r.View()
	assert.False(t, v.IgnoreDueDate)
	assert.Equal(t, 1, v.Pending, "answers survive the failed flush")
	assert.Equal(t, 1, v.Known)
	assert.Equal(t, "offline", errors.Unwrap(err).Error())
	assert.NotEmpty(t, v.LastSaveError)
	src.AssertNumberOfCalls(t, "GetDeck", 1)
}

func TestRunner_Restart(t *testing.T) {
	src := newMemorySource(4)
	for i := range src.deck.Cards {
		src.deck.Cards[i].Streak = 2
		src.deck.Cards[i].ReviewDate = testutil.TimePtr(now.Add(time.Hour))
	}
	o := opts(ModeFlashcard)
	o.IgnoreDueDate = true
	r := NewFlashcardRunner("d1", src, o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	require.NoError(t, r.Restart(ctx))

	v := r.View()
	assert.False(t, v.IgnoreDueDate)
	assert.Equal(t, 4, v.Total, "restarted cards are new again")
	assert.Equal(t, 1, src.restarts)
}

func TestRunner_IgnoreDueDateStartsAnotherRound(t *testing.T) {
	src := newMemorySource(4)
	o := opts(ModeFlashcard)
	o.IgnoreDueDate = true
	r := NewFlashcardRunner("d1", src, o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	var res Result
	for i := 0; i < 4; i++ {
		var err error
		res, err = r.Answer(ctx, yes())
		require.NoError(t, err)
	}

	assert.Equal(t, "active", res.View.State)
	assert.Equal(t, 4, res.View.Total)
	assert.Zero(t, res.View.Known)
	assert.Equal(t, 1, src.saveCount())
}

func TestRunner_AutosaveAfterQuietPeriod(t *testing.T) {
	src := newMemorySource(4)
	o := opts(ModeFlashcard)
	o.QuietPeriod = 20 * time.Millisecond
	r := NewFlashcardRunner("d1", src, o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	_, err := r.Answer(ctx, no())
	require.NoError(t, err)
	_, err = r.Answer(ctx, yes())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return r.View().Pending == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, src.saveCount())
}

func TestRunner_CloseFlushesAndRejectsAnswers(t *testing.T) {
	src := newMemorySource(4)
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	_, err := r.Answer(ctx, no())
	require.NoError(t, err)

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, 1, src.saveCount())

	_, err = r.Answer(ctx, yes())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunner_Shuffle(t *testing.T) {
	r := NewFlashcardRunner("d1", newMemorySource(6), opts(ModeFlashcard))
	require.NoError(t, r.Start(context.Background()))

	v := r.Shuffle()
	assert.Equal(t, 6, v.Total)
	assert.Equal(t, 5, v.Remaining)
	assert.NotNil(t, v.Current)
}

func TestNew_Modes(t *testing.T) {
	src := newMemorySource(4)

	c, err := New("d1", src, Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeFlashcard, c.Mode())

	c, err = New("d1", src, Options{Mode: ModeLearn})
	require.NoError(t, err)
	assert.Equal(t, ModeLearn, c.Mode())

	_, err = New("d1", src, Options{Mode: "quiz"})
	assert.Error(t, err)
}

// gatedSource holds GetDeck open once armed, until release is closed.
type gatedSource struct {
	*memorySource
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(n int) *gatedSource {
	return &gatedSource{
		memorySource: newMemorySource(n),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (s *gatedSource) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = true
}

func (s *gatedSource) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	s.mu.Lock()
	armed := s.armed
	s.armed = false
	s.mu.Unlock()
	if armed {
		close(s.entered)
		<-s.release
	}
	return s.memorySource.GetDeck(ctx, id)
}

func TestRunner_AnswerDuringReloadIsSaved(t *testing.T) {
	src := newGatedSource(4)
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	src.arm()
	reloaded := make(chan error, 1)
	go func() { reloaded <- r.SetIgnoreDueDate(ctx, true) }()
	<-src.entered

	_, err := r.Answer(ctx, yes())
	require.NoError(t, err)
	assert.Equal(t, 1, r.View().Pending)

	close(src.release)
	require.NoError(t, <-reloaded)

	v := r.View()
	assert.True(t, v.IgnoreDueDate)
	assert.Zero(t, v.Pending)
	assert.Equal(t, 4, v.Total)
	require.Equal(t, 1, src.saveCount(), "answer given during the fetch reaches the source")
	assert.Equal(t, "card-1", src.saves[0][0].ID)
	assert.Equal(t, 1, src.saves[0][0].Streak)

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, 1, src.saveCount())
}

func TestRunner_RestartKeepsAnswerGivenDuringFetch(t *testing.T) {
	src := newGatedSource(4)
	r := NewFlashcardRunner("d1", src, opts(ModeFlashcard))
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	src.arm()
	restarted := make(chan error, 1)
	go func() { restarted <- r.Restart(ctx) }()
	<-src.entered

	_, err := r.Answer(ctx, no())
	require.NoError(t, err)
	close(src.release)
	require.NoError(t, <-restarted)

	assert.Zero(t, r.View().Pending)
	assert.Equal(t, 1, src.saveCount())
}

func TestRunner_OnSaveErrorSeesBackgroundFailures(t *testing.T) {
	src := &mocks.MockDeckSource{}
	src.On("GetDeck", mock.Anything, "d1").Return(testutil.Deck("d1", 4), nil)
	src.On("SaveAnswers", mock.Anything, "d1", mock.Anything).Return(errors.New("offline"))

	reported := make(chan error, 4)
	o := opts(ModeFlashcard)
	o.QuietPeriod = 20 * time.Millisecond
	o.OnSaveError = func(err error) { reported <- err }
	r := NewFlashcardRunner("d1", src, o)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	_, err := r.Answer(ctx, yes())
	require.NoError(t, err)

	select {
	case err := <-reported:
		assert.EqualError(t, err, "offline")
	case <-time.After(time.Second):
		t.Fatal("save failure was not reported")
	}
	assert.Equal(t, 1, r.View().Pending)
}
