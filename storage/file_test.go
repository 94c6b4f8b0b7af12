package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	_, err = f.Get("agri_posts_v1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.Set("agri_posts_v1", []byte(`[]`)))
	b, err := f.Get("agri_posts_v1")
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), b)

	require.NoError(t, f.Set("agri_posts_v1", []byte(`[{"id":"1"}]`)))
	b, err = f.Get("agri_posts_v1")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":"1"}]`), b)

	require.NoError(t, f.Remove("agri_posts_v1"))
	_, err = f.Get("agri_posts_v1")
	require.ErrorIs(t, err, ErrNotFound)

	// Removing twice is fine.
	require.NoError(t, f.Remove("agri_posts_v1"))
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Set("k", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "k.json", entries[0].Name())
}

func TestFileStore_KeySanitized(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Set("../escape", []byte("v")))
	_, err = os.Stat(filepath.Join(dir, "__escape.json"))
	require.NoError(t, err)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	m := NewMemory()

	src := []byte("hello")
	require.NoError(t, m.Set("k", src))
	src[0] = 'X'

	got, err := m.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	got[0] = 'Y'
	again, err := m.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), again)

	require.NoError(t, m.Remove("k"))
	_, err = m.Get("k")
	require.ErrorIs(t, err, ErrNotFound)
}
