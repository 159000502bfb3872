package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "arg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arg.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_GameLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.InsertGame(ctx, Game{
		ID: "g1", PlayerID: "p1", Title: "Cold Room", Difficulty: "Hard", Genre: "Horror",
		RequestedPuzzles: 3, TotalPuzzles: 3,
	}))
	require.NoError(t, st.RecordWrongAnswer(ctx, "g1"))
	require.NoError(t, st.RecordWrongAnswer(ctx, "g1"))
	require.NoError(t, st.RecordProgress(ctx, "g1", 1, false))

	games, err := st.RecentGames(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "playing", games[0].Status)
	assert.Equal(t, 1, games[0].Solved)
	assert.Equal(t, 2, games[0].WrongAnswers)
	assert.Empty(t, games[0].FinishedAt)

	require.NoError(t, st.RecordProgress(ctx, "g1", 3, true))
	games, err = st.RecentGames(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, "complete", games[0].Status)
	assert.Equal(t, 3, games[0].Solved)
	assert.NotEmpty(t, games[0].FinishedAt)
}

func TestStore_RecentGamesIsPerPlayerNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	for _, g := range []Game{
		{ID: "a", PlayerID: "p1", Title: "First", StartedAt: "2026-01-01T00:00:00Z"},
		{ID: "b", PlayerID: "p1", Title: "Second", StartedAt: "2026-01-02T00:00:00Z"},
		{ID: "c", PlayerID: "p2", Title: "Other", StartedAt: "2026-01-03T00:00:00Z"},
	} {
		g.Difficulty, g.Genre = "Easy", "Modern"
		require.NoError(t, st.InsertGame(ctx, g))
	}

	games, err := st.RecentGames(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Second", games[0].Title)
	assert.Equal(t, "First", games[1].Title)

	none, err := st.RecentGames(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
