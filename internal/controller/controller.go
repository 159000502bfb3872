// internal/controller/controller.go
//
// Game controller: orchestrates story generation and answer checking.
// Responsibilities:
//   - StartGame: validate input, build the prompt, call the generator,
//     install the story in a fresh session for the player.
//   - CheckAnswer: compare an answer with the player's current puzzle and
//     advance or report state.
//   - History: list the player's archived games.
//
// Notes:
//   - Progress is keyed by player id; players never see each other's state.
//   - Each player's session is read, mutated and saved under a per-player lock.
//     Generation runs outside the lock so a slow model call does not block
//     answers for the previous story; the install that follows it does take it.
//   - Archive writes are best effort: failures are logged, never returned.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arg-server/internal/archive"
	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/generator"
	"github.com/robalobadob/arg-server/internal/metrics"
	"github.com/robalobadob/arg-server/internal/prompt"
	"github.com/robalobadob/arg-server/internal/store"
)

var (
	// ErrInvalidRequest means required input was missing.
	ErrInvalidRequest = errors.New("missing difficulty or genre")
	// ErrServiceUnavailable means the story generator could not be initialized.
	ErrServiceUnavailable = errors.New("story generator not initialized")
	// ErrNotStarted means an answer arrived before any story was generated.
	ErrNotStarted = errors.New("game not initialized, please start a new game")
)

const (
	msgIncorrect       = "The code is incorrect. Try again."
	msgAlreadyFinished = "Game already finished."
)

// Archive records games for the history view.
type Archive interface {
	InsertGame(ctx context.Context, g archive.Game) error
	RecordWrongAnswer(ctx context.Context, gameID string) error
	RecordProgress(ctx context.Context, gameID string, solved int, finished bool) error
	RecentGames(ctx context.Context, playerID string, limit int) ([]archive.Game, error)
}

// Controller runs games for any number of players.
type Controller struct {
	gen     generator.Generator
	store   store.Store
	archive Archive // nil disables history

	locks sync.Map // player id → *sync.Mutex
}

// New constructs a Controller. gen may be nil (every StartGame then fails
// with ErrServiceUnavailable) and ar may be nil (no history).
func New(gen generator.Generator, st store.Store, ar Archive) *Controller {
	return &Controller{gen: gen, store: st, archive: ar}
}

// StartResult is returned by StartGame.
type StartResult struct {
	GameID       string
	Title        string
	Introduction string
	Puzzle       game.Puzzle
	PuzzleIndex  int // 1-based
	TotalPuzzles int
}

// AnswerResult is returned by CheckAnswer. Which fields are set depends on Status.
type AnswerResult struct {
	Status      game.Status
	Narrative   string       // correct, complete
	Puzzle      *game.Puzzle // correct
	PuzzleIndex int          // correct, 1-based
	EndingText  string       // complete
	Message     string       // incorrect, already_finished
}

// StartGame generates a new story and makes it the player's active game,
// discarding any previous game whatever its progress.
func (c *Controller) StartGame(ctx context.Context, playerID, difficulty, genre string) (*StartResult, error) {
	difficulty, genre = strings.TrimSpace(difficulty), strings.TrimSpace(genre)
	if difficulty == "" || genre == "" {
		return nil, ErrInvalidRequest
	}
	if c.gen == nil {
		return nil, ErrServiceUnavailable
	}

	req := prompt.Build(difficulty, genre)
	logger := log.With().Str("player", playerID).Str("difficulty", difficulty).Str("genre", genre).Logger()
	logger.Info().Int("puzzles", req.PuzzleCount).Msg("generating story")

	started := time.Now()
	story, err := c.gen.Generate(ctx, req)
	metrics.ObserveGeneration(time.Since(started))
	if err != nil {
		if errors.Is(err, generator.ErrClientUnavailable) {
			metrics.GenerationFailed("unavailable")
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		metrics.GenerationFailed("generation")
		logger.Error().Err(err).Msg("story generation failed")
		return nil, err
	}
	if story == nil || len(story.Puzzles) == 0 {
		metrics.GenerationFailed("unplayable")
		return nil, &generator.GenerationError{Err: game.ErrUnplayable}
	}
	if n := len(story.Puzzles); n != req.PuzzleCount {
		metrics.PuzzleCountMismatch()
		logger.Warn().Int("requested", req.PuzzleCount).Int("generated", n).Msg("puzzle count mismatch, continuing")
	}

	sess := game.NewSession(difficulty, genre)
	sess.Install(story)

	unlock := c.lock(playerID)
	defer unlock()
	if err := c.store.Save(ctx, playerID, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if c.archive != nil {
		if err := c.archive.InsertGame(ctx, archive.Game{
			ID:               sess.GameID,
			PlayerID:         playerID,
			Title:            story.Title,
			Difficulty:       difficulty,
			Genre:            genre,
			RequestedPuzzles: req.PuzzleCount,
			TotalPuzzles:     sess.Total(),
		}); err != nil {
			logger.Warn().Err(err).Str("gameId", sess.GameID).Msg("archive game")
		}
	}
	metrics.GameStarted(difficultyLabel(difficulty))
	logger.Info().Str("gameId", sess.GameID).Str("title", story.Title).Int("puzzles", sess.Total()).Msg("story installed")

	first, _ := sess.Current()
	return &StartResult{
		GameID:       sess.GameID,
		Title:        story.Title,
		Introduction: story.Introduction,
		Puzzle:       first,
		PuzzleIndex:  1,
		TotalPuzzles: sess.Total(),
	}, nil
}

// CheckAnswer compares answer with the player's current puzzle solution.
func (c *Controller) CheckAnswer(ctx context.Context, playerID, answer string) (*AnswerResult, error) {
	unlock := c.lock(playerID)
	defer unlock()

	sess, err := c.store.Get(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Started() {
		return nil, ErrNotStarted
	}

	res := sess.Answer(answer)
	metrics.Answer(string(res.Status))

	switch res.Status {
	case game.StatusAlreadyFinished:
		return &AnswerResult{Status: res.Status, Message: msgAlreadyFinished}, nil
	case game.StatusIncorrect:
		c.archiveWrong(ctx, sess.GameID)
		return &AnswerResult{Status: res.Status, Message: msgIncorrect}, nil
	}

	if err := c.store.Save(ctx, playerID, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.archiveProgress(ctx, sess.GameID, sess.Index, res.Status == game.StatusComplete)

	out := &AnswerResult{Status: res.Status, Narrative: res.Solved.NarrativeContinuation}
	if res.Status == game.StatusComplete {
		out.EndingText = sess.Story.EndingText
		log.Info().Str("player", playerID).Str("gameId", sess.GameID).Msg("story complete")
		return out, nil
	}
	next := res.Next
	out.Puzzle = &next
	out.PuzzleIndex = res.Position
	return out, nil
}

// History returns the player's most recent archived games.
func (c *Controller) History(ctx context.Context, playerID string, limit int) ([]archive.Game, error) {
	if c.archive == nil {
		return []archive.Game{}, nil
	}
	return c.archive.RecentGames(ctx, playerID, limit)
}

func (c *Controller) archiveWrong(ctx context.Context, gameID string) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordWrongAnswer(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("archive wrong answer")
	}
}

func (c *Controller) archiveProgress(ctx context.Context, gameID string, solved int, finished bool) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordProgress(ctx, gameID, solved, finished); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("archive progress")
	}
}

// lock acquires the player's mutex and returns its unlock func.
func (c *Controller) lock(playerID string) func() {
	v, _ := c.locks.LoadOrStore(playerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// difficultyLabel keeps metric cardinality bounded.
func difficultyLabel(d string) string {
	if prompt.KnownDifficulty(d) {
		return d
	}
	return "other"
}
