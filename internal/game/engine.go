// internal/game/engine.go
//
// Session state and answer checking for a single ARG playthrough.
// Responsibilities:
//   - Install a freshly generated story (replacing any previous one).
//   - Report the current puzzle or the not-started/complete condition.
//   - Normalize and compare answers; advance on a match.
//
// Notes:
//   - Sessions are not goroutine-safe; callers serialize access per player.
//   - Comparison is exact equality after trim + lower-case on both sides.
package game

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSession returns an empty session with a fresh game id.
func NewSession(difficulty, genre string) *Session {
	return &Session{
		GameID:     uuid.NewString(),
		Difficulty: difficulty,
		Genre:      genre,
		StartedAt:  time.Now().UTC(),
	}
}

// Install replaces any existing story and resets progress to the first puzzle.
func (s *Session) Install(story *Story) {
	s.Story = story
	s.Index = 0
}

// Started reports whether a story is installed.
func (s *Session) Started() bool { return s != nil && s.Story != nil }

// Total returns the number of puzzles in the installed story.
func (s *Session) Total() int {
	if !s.Started() {
		return 0
	}
	return len(s.Story.Puzzles)
}

// Complete reports whether every puzzle has been solved.
func (s *Session) Complete() bool { return s.Started() && s.Index >= s.Total() }

// Current returns the puzzle at the current index.
// ok is false before a story is installed and once the game is complete.
func (s *Session) Current() (p Puzzle, ok bool) {
	if !s.Started() || s.Complete() {
		return Puzzle{}, false
	}
	return s.Story.Puzzles[s.Index], true
}

// Advance moves to the next puzzle.
func (s *Session) Advance() { s.Index++ }

// Result is the outcome of one Answer call.
type Result struct {
	Status Status
	// Solved is the puzzle just answered correctly (correct/complete only).
	Solved Puzzle
	// Next is the puzzle now being served (correct only).
	Next Puzzle
	// Position is the 1-based position of Next.
	Position int
}

// Answer checks a submitted answer against the current puzzle.
// Incorrect answers never mutate the session; answers after completion
// report StatusAlreadyFinished without mutating it either.
// The caller must ensure a story is installed.
func (s *Session) Answer(answer string) Result {
	cur, ok := s.Current()
	if !ok {
		return Result{Status: StatusAlreadyFinished}
	}
	if normalize(answer) != normalize(cur.Solution) {
		return Result{Status: StatusIncorrect}
	}

	s.Advance()
	if next, ok := s.Current(); ok {
		return Result{Status: StatusCorrect, Solved: cur, Next: next, Position: s.Index + 1}
	}
	return Result{Status: StatusComplete, Solved: cur}
}

// normalize trims surrounding whitespace and lower-cases.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
