package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/fabtrack/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGet(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "boms")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Set(ctx, "boms", []byte("one")))
	require.NoError(t, s.Set(ctx, "boms", []byte("two")))

	got, err := s.Get(ctx, "boms")
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	onDisk, err := os.ReadFile(filepath.Join(root, "boms"))
	require.NoError(t, err)
	require.Equal(t, "two", string(onDisk))
}

func TestStore_NestedKey(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tenants/a/boms", []byte("x")))
	got, err := s.Get(ctx, "tenants/a/boms")
	require.NoError(t, err)
	require.Equal(t, "x", string(got))
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "boms", []byte("x")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "boms", entries[0].Name())
}

func TestStore_RejectsBadKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "  ", "../escape", "/abs"} {
		require.ErrorIs(t, s.Set(ctx, key, []byte("x")), repository.ErrInvalidKey, "key %q", key)
	}
}
