// internal/httpserver/routes_game.go
//
// HTTP routes for playing a generated ARG:
//   - POST /generate_story → generate a story and serve its first puzzle
//   - POST /check_answer   → check an answer against the current puzzle
//   - GET  /history        → the calling player's recent games
//   - GET  /               → the single-page client
//
// Error bodies are always {"error": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arg-server/assets"
	"github.com/robalobadob/arg-server/internal/archive"
	"github.com/robalobadob/arg-server/internal/controller"
	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/generator"
	"github.com/robalobadob/arg-server/internal/prompt"
)

// puzzleJSON is the wire form of a puzzle. Solution is omitted only when
// redaction is enabled; stored solutions are never empty.
type puzzleJSON struct {
	PuzzleNumber          int    `json:"puzzle_number"`
	Title                 string `json:"title"`
	PuzzleText            string `json:"puzzle_text"`
	Solution              string `json:"solution,omitempty"`
	NarrativeContinuation string `json:"narrative_continuation"`
	Hint1                 string `json:"hint_1"`
	Hint2                 string `json:"hint_2"`
	Hint3                 string `json:"hint_3"`
}

func (s *Server) puzzle(p game.Puzzle) puzzleJSON {
	out := puzzleJSON{
		PuzzleNumber:          p.Number,
		Title:                 p.Title,
		PuzzleText:            p.PuzzleText,
		Solution:              p.Solution,
		NarrativeContinuation: p.NarrativeContinuation,
		Hint1:                 p.Hint1,
		Hint2:                 p.Hint2,
		Hint3:                 p.Hint3,
	}
	if s.opts.RedactSolutions {
		out.Solution = ""
	}
	return out
}

// -----------------------------------------------------------------------------
// /generate_story

type generateReq struct {
	Difficulty string `json:"difficulty"`
	Genre      string `json:"genre"`
}

type generateRes struct {
	Success      bool       `json:"success"`
	Title        string     `json:"title"`
	Introduction string     `json:"introduction"`
	Puzzle       puzzleJSON `json:"puzzle"`
	PuzzleIndex  int        `json:"puzzle_index"`
	TotalPuzzles int        `json:"total_puzzles"`
}

// handleGenerateStory generates a new story for the calling player,
// replacing any game in progress.
func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.GenerationTimeout)
	defer cancel()

	res, err := s.ctl.StartGame(ctx, playerID(r), req.Difficulty, req.Genre)
	switch {
	case errors.Is(err, controller.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "Missing difficulty or genre.")
		return
	case errors.Is(err, controller.ErrServiceUnavailable):
		writeError(w, http.StatusInternalServerError, "Story generator not initialized. Check your API key.")
		return
	case errors.Is(err, generator.ErrGeneration):
		writeError(w, http.StatusInternalServerError, "Failed to generate story: "+err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("start game")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, generateRes{
		Success:      true,
		Title:        res.Title,
		Introduction: res.Introduction,
		Puzzle:       s.puzzle(res.Puzzle),
		PuzzleIndex:  res.PuzzleIndex,
		TotalPuzzles: res.TotalPuzzles,
	})
}

// -----------------------------------------------------------------------------
// /check_answer

type answerReq struct {
	Answer string `json:"answer"`
}

type answerRes struct {
	Success     bool        `json:"success"`
	Status      game.Status `json:"status"`
	Narrative   string      `json:"narrative,omitempty"`
	Puzzle      *puzzleJSON `json:"puzzle,omitempty"`
	PuzzleIndex int         `json:"puzzle_index,omitempty"`
	EndingText  string      `json:"ending_text,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// handleCheckAnswer checks the submitted answer against the player's current puzzle.
// A missing answer field is treated as an empty (incorrect) answer.
func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := s.ctl.CheckAnswer(r.Context(), playerID(r), req.Answer)
	switch {
	case errors.Is(err, controller.ErrNotStarted):
		writeError(w, http.StatusBadRequest, "Game not initialized. Please start a new game.")
		return
	case err != nil:
		log.Error().Err(err).Msg("check answer")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	out := answerRes{
		Success:     true,
		Status:      res.Status,
		Narrative:   res.Narrative,
		PuzzleIndex: res.PuzzleIndex,
		EndingText:  res.EndingText,
		Message:     res.Message,
	}
	if res.Puzzle != nil {
		p := s.puzzle(*res.Puzzle)
		out.Puzzle = &p
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// /history

type historyRes struct {
	Games []archive.Game `json:"games"`
}

// handleHistory returns the calling player's recent games (default 20, max 100).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	games, err := s.ctl.History(r.Context(), playerID(r), limit)
	if err != nil {
		log.Error().Err(err).Msg("history")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, historyRes{Games: games})
}

// -----------------------------------------------------------------------------
// /

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, assets.IndexData{
		Difficulties: prompt.Difficulties(),
		Genres:       prompt.Genres(),
	}); err != nil {
		log.Error().Err(err).Msg("render index")
	}
}
