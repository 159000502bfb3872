package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/arg-server/internal/archive"
	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/generator"
	"github.com/robalobadob/arg-server/internal/prompt"
	"github.com/robalobadob/arg-server/internal/store"
)

// fakeGenerator returns a story with the requested number of puzzles whose
// solutions are "answer-1", "answer-2", ... unless overridden.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []prompt.Request
	count    int // 0 means use the requested count
	title    string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, req prompt.Request) (*game.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	n := f.count
	if n == 0 {
		n = req.PuzzleCount
	}
	title := f.title
	if title == "" {
		title = req.Genre + " story"
	}
	return makeStory(title, n), nil
}

func (f *fakeGenerator) last() prompt.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func makeStory(title string, n int) *game.Story {
	s := &game.Story{Title: title, Introduction: "intro of " + title, EndingText: "the end of " + title}
	for i := 1; i <= n; i++ {
		s.Puzzles = append(s.Puzzles, game.Puzzle{
			Number:                i,
			Title:                 fmt.Sprintf("Puzzle %d", i),
			PuzzleText:            fmt.Sprintf("text %d", i),
			Solution:              fmt.Sprintf("answer-%d", i),
			NarrativeContinuation: fmt.Sprintf("narrative %d", i),
			Hint1:                 "h1", Hint2: "h2", Hint3: "h3",
		})
	}
	return s
}

type fakeArchive struct {
	mu       sync.Mutex
	games    map[string]archive.Game
	wrong    map[string]int
	failures bool
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{games: map[string]archive.Game{}, wrong: map[string]int{}}
}

func (a *fakeArchive) InsertGame(_ context.Context, g archive.Game) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures {
		return errors.New("disk full")
	}
	g.Status = "playing"
	a.games[g.ID] = g
	return nil
}

func (a *fakeArchive) RecordWrongAnswer(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures {
		return errors.New("disk full")
	}
	a.wrong[id]++
	return nil
}

func (a *fakeArchive) RecordProgress(_ context.Context, id string, solved int, finished bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures {
		return errors.New("disk full")
	}
	g := a.games[id]
	g.Solved = solved
	if finished {
		g.Status = "complete"
	}
	a.games[id] = g
	return nil
}

func (a *fakeArchive) RecentGames(_ context.Context, playerID string, _ int) ([]archive.Game, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []archive.Game
	for _, g := range a.games {
		if g.PlayerID == playerID {
			out = append(out, g)
		}
	}
	return out, nil
}

const player = "player-1"

func newController(gen generator.Generator) (*Controller, *fakeArchive) {
	ar := newFakeArchive()
	return New(gen, store.NewMemoryStore(), ar), ar
}

func TestStartGame_RequestsPerDifficultyAndGenre(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	c, _ := newController(gen)

	counts := map[string]int{"Easy": 7, "Medium": 5, "Hard": 3, "Impossible": 5}
	for _, genre := range []string{"Sci-fi", "Medieval", "Mythological", "Horror", "Modern", "Western"} {
		for difficulty, want := range counts {
			res, err := c.StartGame(ctx, player, difficulty, genre)
			require.NoError(t, err)
			req := gen.last()
			assert.Equal(t, want, req.PuzzleCount, "%s/%s", difficulty, genre)
			assert.Equal(t, prompt.Tone(genre), req.Tone)
			assert.Equal(t, want, res.TotalPuzzles)
		}
	}
	assert.Equal(t, prompt.DefaultTone, prompt.Tone("Western"))
}

func TestStartGame_InvalidRequest(t *testing.T) {
	gen := &fakeGenerator{}
	c, _ := newController(gen)
	for _, in := range [][2]string{{"", "Horror"}, {"Hard", ""}, {"  ", "Horror"}, {"", ""}} {
		_, err := c.StartGame(context.Background(), player, in[0], in[1])
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Empty(t, gen.requests)
}

func TestStartGame_ServiceUnavailable(t *testing.T) {
	c, _ := newController(nil)
	_, err := c.StartGame(context.Background(), player, "Hard", "Horror")
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	c, _ = newController(generator.Unavailable{Err: errors.New("GEMINI_API_KEY is not set")})
	_, err = c.StartGame(context.Background(), player, "Hard", "Horror")
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = c.CheckAnswer(context.Background(), player, "x")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStartGame_GenerationFailurePropagates(t *testing.T) {
	gen := &fakeGenerator{err: &generator.GenerationError{Err: errors.New("deadline exceeded")}}
	c, ar := newController(gen)

	_, err := c.StartGame(context.Background(), player, "Hard", "Horror")
	require.Error(t, err)
	assert.ErrorIs(t, err, generator.ErrGeneration)
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.Empty(t, ar.games)

	_, err = c.CheckAnswer(context.Background(), player, "x")
	assert.ErrorIs(t, err, ErrNotStarted)
}

type emptyGenerator struct{}

func (emptyGenerator) Generate(context.Context, prompt.Request) (*game.Story, error) {
	return &game.Story{Title: "t", Introduction: "i", EndingText: "e"}, nil
}

func TestStartGame_EmptyStoryIsGenerationFailure(t *testing.T) {
	c, _ := newController(emptyGenerator{})
	_, err := c.StartGame(context.Background(), player, "Hard", "Horror")
	assert.ErrorIs(t, err, generator.ErrGeneration)
	assert.ErrorIs(t, err, game.ErrUnplayable)
}

func TestStartGame_PuzzleCountMismatchIsTolerated(t *testing.T) {
	gen := &fakeGenerator{count: 2}
	c, ar := newController(gen)

	res, err := c.StartGame(context.Background(), player, "Easy", "Modern")
	require.NoError(t, err)
	assert.Equal(t, 7, gen.last().PuzzleCount)
	assert.Equal(t, 2, res.TotalPuzzles)

	g := ar.games[res.GameID]
	assert.Equal(t, 7, g.RequestedPuzzles)
	assert.Equal(t, 2, g.TotalPuzzles)
}

func TestCheckAnswer_NotStarted(t *testing.T) {
	c, ar := newController(&fakeGenerator{})
	for i := 0; i < 3; i++ {
		res, err := c.CheckAnswer(context.Background(), player, "anything")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrNotStarted)
	}
	assert.Empty(t, ar.games)
}

func TestCheckAnswer_NormalizationAndIncorrect(t *testing.T) {
	ctx := context.Background()
	c, ar := newController(&fakeGenerator{})
	start, err := c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		res, err := c.CheckAnswer(ctx, player, "answr-1")
		require.NoError(t, err)
		assert.Equal(t, game.StatusIncorrect, res.Status)
		assert.Equal(t, "The code is incorrect. Try again.", res.Message)
	}
	assert.Equal(t, 10, ar.wrong[start.GameID])

	res, err := c.CheckAnswer(ctx, player, "  ANSWER-1 ")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCorrect, res.Status)
	assert.Equal(t, 2, res.PuzzleIndex)
}

func TestCheckAnswer_AlreadyFinishedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, ar := newController(&fakeGenerator{})
	start, err := c.StartGame(ctx, player, "Medium", "Sci-fi")
	require.NoError(t, err)

	for i := 1; i <= start.TotalPuzzles; i++ {
		res, err := c.CheckAnswer(ctx, player, fmt.Sprintf("answer-%d", i))
		require.NoError(t, err)
		if i < start.TotalPuzzles {
			require.Equal(t, game.StatusCorrect, res.Status)
		} else {
			require.Equal(t, game.StatusComplete, res.Status)
		}
	}
	assert.Equal(t, "complete", ar.games[start.GameID].Status)
	assert.Equal(t, 5, ar.games[start.GameID].Solved)

	for i := 0; i < 3; i++ {
		res, err := c.CheckAnswer(ctx, player, "answer-5")
		require.NoError(t, err)
		assert.Equal(t, game.StatusAlreadyFinished, res.Status)
		assert.Equal(t, "Game already finished.", res.Message)
	}
	sess, err := c.store.Get(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 5, sess.Index)
}

func TestStartGame_SecondCallDiscardsPreviousGame(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	c, _ := newController(gen)

	_, err := c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)
	_, err = c.CheckAnswer(ctx, player, "answer-1")
	require.NoError(t, err)

	// Restart mid-progress.
	gen.title = "Second"
	res, err := c.StartGame(ctx, player, "Hard", "Modern")
	require.NoError(t, err)
	assert.Equal(t, "Second", res.Title)
	assert.Equal(t, 1, res.PuzzleIndex)
	assert.Equal(t, "answer-1", res.Puzzle.Solution)

	ans, err := c.CheckAnswer(ctx, player, "answer-2")
	require.NoError(t, err)
	assert.Equal(t, game.StatusIncorrect, ans.Status)

	// Restart after completion.
	for _, a := range []string{"answer-1", "answer-2", "answer-3"} {
		_, err := c.CheckAnswer(ctx, player, a)
		require.NoError(t, err)
	}
	gen.title = "Third"
	res, err = c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)
	assert.Equal(t, "Third", res.Title)
	ans, err = c.CheckAnswer(ctx, player, "answer-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCorrect, ans.Status)
}

func TestEndToEnd_HardHorror(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	c, _ := newController(gen)

	res, err := c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)
	req := gen.last()
	assert.Equal(t, 3, req.PuzzleCount)
	assert.Equal(t, prompt.Tone("Horror"), req.Tone)
	assert.Equal(t, 1, res.PuzzleIndex)
	assert.Equal(t, 3, res.TotalPuzzles)
	assert.Equal(t, "Horror story", res.Title)
	assert.Equal(t, "Puzzle 1", res.Puzzle.Title)

	ans, err := c.CheckAnswer(ctx, player, "answer-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCorrect, ans.Status)
	assert.Equal(t, 2, ans.PuzzleIndex)
	assert.Equal(t, "narrative 1", ans.Narrative)
	require.NotNil(t, ans.Puzzle)
	assert.Equal(t, "Puzzle 2", ans.Puzzle.Title)

	ans, err = c.CheckAnswer(ctx, player, "answer-2")
	require.NoError(t, err)
	assert.Equal(t, 3, ans.PuzzleIndex)

	ans, err = c.CheckAnswer(ctx, player, "answer-3")
	require.NoError(t, err)
	assert.Equal(t, game.StatusComplete, ans.Status)
	assert.Equal(t, "narrative 3", ans.Narrative)
	assert.Equal(t, "the end of Horror story", ans.EndingText)
	assert.Nil(t, ans.Puzzle)
}

func TestPlayersAreIsolated(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(&fakeGenerator{})

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := c.StartGame(ctx, id, "Hard", "Horror")
			assert.NoError(t, err)
			for i := 1; i <= 3; i++ {
				res, err := c.CheckAnswer(ctx, id, fmt.Sprintf("answer-%d", i))
				assert.NoError(t, err)
				if res != nil && i == 3 {
					assert.Equal(t, game.StatusComplete, res.Status)
				}
			}
		}(fmt.Sprintf("p%d", p))
	}
	wg.Wait()

	_, err := c.CheckAnswer(ctx, "late-comer", "answer-1")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestArchiveFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	c, ar := newController(&fakeGenerator{})
	ar.failures = true

	_, err := c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)
	res, err := c.CheckAnswer(ctx, player, "nope")
	require.NoError(t, err)
	assert.Equal(t, game.StatusIncorrect, res.Status)
	res, err = c.CheckAnswer(ctx, player, "answer-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCorrect, res.Status)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(&fakeGenerator{})
	_, err := c.StartGame(ctx, player, "Hard", "Horror")
	require.NoError(t, err)

	games, err := c.History(ctx, player, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Horror story", games[0].Title)

	noArchive := New(&fakeGenerator{}, store.NewMemoryStore(), nil)
	games, err = noArchive.History(ctx, player, 10)
	require.NoError(t, err)
	assert.Empty(t, games)
}
