package archive

import (
	"context"
	"database/sql"
	"time"
)

// Game is one archived playthrough.
type Game struct {
	ID               string `json:"id"`
	PlayerID         string `json:"-"`
	Title            string `json:"title"`
	Difficulty       string `json:"difficulty"`
	Genre            string `json:"genre"`
	RequestedPuzzles int    `json:"requestedPuzzles"`
	TotalPuzzles     int    `json:"totalPuzzles"`
	Solved           int    `json:"solved"`
	WrongAnswers     int    `json:"wrongAnswers"`
	Status           string `json:"status"` // playing | complete
	StartedAt        string `json:"startedAt"`
	FinishedAt       string `json:"finishedAt,omitempty"`
}

// Store records games in SQLite.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InsertGame records a newly started game.
func (s *Store) InsertGame(ctx context.Context, g Game) error {
	if g.StartedAt == "" {
		g.StartedAt = now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO games
            (id, player_id, title, difficulty, genre, requested_puzzles, total_puzzles, status, started_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, 'playing', ?)`,
		g.ID, g.PlayerID, g.Title, g.Difficulty, g.Genre, g.RequestedPuzzles, g.TotalPuzzles, g.StartedAt,
	)
	return err
}

// RecordWrongAnswer bumps the wrong-answer counter.
func (s *Store) RecordWrongAnswer(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE games SET wrong_answers = wrong_answers + 1 WHERE id=?`, gameID)
	return err
}

// RecordProgress stores the number of solved puzzles and, when finished,
// marks the game complete.
func (s *Store) RecordProgress(ctx context.Context, gameID string, solved int, finished bool) error {
	if !finished {
		_, err := s.db.ExecContext(ctx, `UPDATE games SET solved=? WHERE id=?`, solved, gameID)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET solved=?, status='complete', finished_at=? WHERE id=?`, solved, now(), gameID)
	return err
}

// RecentGames lists a player's games, newest first. Default limit is 20.
func (s *Store) RecentGames(ctx context.Context, playerID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, player_id, title, difficulty, genre, requested_puzzles, total_puzzles,
               solved, wrong_answers, status, started_at, COALESCE(finished_at, '')
        FROM games
        WHERE player_id=?
        ORDER BY started_at DESC, rowid DESC
        LIMIT ?`, playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Game, 0, limit)
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.Title, &g.Difficulty, &g.Genre, &g.RequestedPuzzles,
			&g.TotalPuzzles, &g.Solved, &g.WrongAnswers, &g.Status, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
