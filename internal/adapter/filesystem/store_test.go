package filesystem

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PrepareIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root, slog.Default())

	require.NoError(t, s.Prepare(context.Background(), "25-04-25"))
	require.NoError(t, s.Prepare(context.Background(), "25-04-25"))

	info, err := os.Stat(filepath.Join(root, "25-04-25"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_PutWritesAndReplaces(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root, slog.Default())
	ctx := context.Background()
	require.NoError(t, s.Prepare(ctx, "d"))

	require.NoError(t, s.Put(ctx, "d", "gsla_meta.json", []byte(`{"width":1}`)))
	require.NoError(t, s.Put(ctx, "d", "gsla_meta.json", []byte(`{"width":2}`)))

	data, err := os.ReadFile(filepath.Join(root, "d", "gsla_meta.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":2}`, string(data))

	entries, err := os.ReadDir(filepath.Join(root, "d"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_PutMissingDir(t *testing.T) {
	s := NewStore(t.TempDir(), slog.Default())
	err := s.Put(context.Background(), "absent", "gsla_data.json", []byte("{}"))
	assert.Error(t, err)
}

func TestStore_PutCancelled(t *testing.T) {
	s := NewStore(t.TempDir(), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "d", "x", nil), context.Canceled)
}
