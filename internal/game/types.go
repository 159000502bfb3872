// internal/game/types.go
//
// Core type definitions for the ARG game engine.
// Defines:
//   - Puzzle: one solvable step of a generated story.
//   - Story:  the complete generated narrative with its ordered puzzles.
//   - Session: one player's progress through one Story.
//
// JSON tags match the schema sent to the generator, so a decoded model
// response is a Story without any intermediate mapping.

package game

import (
	"errors"
	"fmt"
	"time"
)

// Puzzle is one riddle, cipher or logic step of the ARG.
type Puzzle struct {
	Number                int    `json:"puzzle_number"`
	Title                 string `json:"title"`
	PuzzleText            string `json:"puzzle_text"`
	Solution              string `json:"solution"`
	NarrativeContinuation string `json:"narrative_continuation"`
	Hint1                 string `json:"hint_1"`
	Hint2                 string `json:"hint_2"`
	Hint3                 string `json:"hint_3"`
}

// Story is a complete generated ARG.
type Story struct {
	Title        string   `json:"story_title"`
	Introduction string   `json:"introduction"`
	Puzzles      []Puzzle `json:"puzzles"`
	EndingText   string   `json:"ending_text"`
}

// ErrUnplayable is returned by Validate for a story without puzzles.
var ErrUnplayable = errors.New("story has no puzzles")

// Validate checks the required fields of a decoded story.
// It does not judge whether a solution actually solves its puzzle.
func (s *Story) Validate() error {
	if s.Title == "" {
		return errors.New("story_title is required")
	}
	if s.Introduction == "" {
		return errors.New("introduction is required")
	}
	if s.EndingText == "" {
		return errors.New("ending_text is required")
	}
	if len(s.Puzzles) == 0 {
		return ErrUnplayable
	}
	// Progress is tracked by position, so puzzle_number is not checked.
	for i, p := range s.Puzzles {
		if p.Title == "" || p.PuzzleText == "" {
			return fmt.Errorf("puzzle %d: title and puzzle_text are required", i+1)
		}
		if normalize(p.Solution) == "" {
			return fmt.Errorf("puzzle %d: solution is required", i+1)
		}
	}
	return nil
}

// Status is the coarse outcome of an answer submission.
type Status string

const (
	StatusCorrect         Status = "correct"
	StatusComplete        Status = "complete"
	StatusIncorrect       Status = "incorrect"
	StatusAlreadyFinished Status = "already_finished"
)

// Session holds one player's active story and position.
// Index is a zero-based offset into Story.Puzzles; Index >= len(Puzzles)
// means the game is complete.
type Session struct {
	GameID     string    `json:"game_id"`
	Difficulty string    `json:"difficulty"`
	Genre      string    `json:"genre"`
	Story      *Story    `json:"story,omitempty"`
	Index      int       `json:"index"`
	StartedAt  time.Time `json:"started_at"`
}
