package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewoodlane/engine/pkg/game"
	"github.com/maplewoodlane/engine/pkg/state"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close storage: %v", err)
		}
	})

	return s, mr, dataDir
}

func testSession() *game.SavedSession {
	gs := state.New()
	gs.AddClue("iris_journal")
	return &game.SavedSession{
		ID:        gs.ID,
		PackName:  "maplewood_lane",
		SavedAt:   time.Now(),
		GameState: gs,
		Position:  "porch",
	}
}

func TestRedisStorage_SessionLifecycle(t *testing.T) {
	s, _, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	sess := testSession()
	require.NoError(t, s.SaveSession(ctx, sess))

	loaded, err := s.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "maplewood_lane", loaded.PackName)
	assert.Equal(t, "porch", loaded.Position)
	assert.True(t, loaded.GameState.HasClue("iris_journal"))

	require.NoError(t, s.DeleteSession(ctx, sess.ID))
	loaded, err = s.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded, "deleted session loads as nil")
}

func TestRedisStorage_LoadMissingSession(t *testing.T) {
	s, _, _ := setupTestStorage(t)

	loaded, err := s.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_SessionExpiry(t *testing.T) {
	s, mr, _ := setupTestStorage(t)
	ctx := context.Background()

	sess := testSession()
	require.NoError(t, s.SaveSession(ctx, sess))

	mr.FastForward(sessionTTL + time.Minute)

	loaded, err := s.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded, "expired session loads as nil")
}

func TestRedisStorage_Packs(t *testing.T) {
	s, _, dataDir := setupTestStorage(t)
	ctx := context.Background()

	packsDir := filepath.Join(dataDir, "packs")
	require.NoError(t, os.MkdirAll(packsDir, 0o755))
	pack := `{
		"name": "mini",
		"characters": [{"id": "camille", "name": "Camille", "initial_trust": 30}],
		"clues": {"bus_ticket": "A bus ticket stub"},
		"endings": [{"name": "open"}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(packsDir, "mini.json"), []byte(pack), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(packsDir, "broken.json"), []byte("{"), 0o644))

	packs, err := s.ListPacks(ctx)
	require.NoError(t, err)
	// Unreadable packs are skipped, not fatal.
	assert.Equal(t, map[string]string{"mini": "mini.json"}, packs)

	p, err := s.GetPack(ctx, "mini.json")
	require.NoError(t, err)
	assert.Equal(t, "mini", p.Name)

	_, err = s.GetPack(ctx, "missing.json")
	assert.Error(t, err)
}
