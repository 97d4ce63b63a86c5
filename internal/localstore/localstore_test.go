package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "local.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestPutReadAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "requirement_list", "b", map[string]string{"title": "B"}))
	require.NoError(t, s.Put(ctx, "requirement_list", "a", map[string]string{"title": "A"}))
	require.NoError(t, s.Put(ctx, "other", "x", map[string]string{"title": "X"}))

	docs, err := s.ReadAll(ctx, "requirement_list")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Key)
	assert.JSONEq(t, `{"title":"A"}`, string(docs[0].Raw))
}

func TestPut_Overwrites(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "requirement_list", "k", map[string]string{"title": "old"}))
	require.NoError(t, s.Put(ctx, "requirement_list", "k", map[string]string{"title": "new"}))

	docs, err := s.ReadAll(ctx, "requirement_list")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"title":"new"}`, string(docs[0].Raw))
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "requirement_list", "k", map[string]string{"title": "x"}))
	require.NoError(t, s.Delete(ctx, "requirement_list", "k"))
	require.NoError(t, s.Delete(ctx, "requirement_list", "missing"))

	docs, err := s.ReadAll(ctx, "requirement_list")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
