package filelock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	lock := NewFileLock(path)
	require.NotNil(t, lock)
	assert.Equal(t, path, lock.Path())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing is created before the lock is taken")
}

func TestTryLock_HeldByAnotherLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	first := NewFileLock(path)
	acquired, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer first.Unlock()

	second := NewFileLock(path)
	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired, "second lock on the same path should not be acquired")
}

func TestTryLock_AfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	first := NewFileLock(path)
	acquired, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, first.Unlock())

	second := NewFileLock(path)
	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Unlock())
}

func TestUnlock_NotHeld(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "out.txt"))
	assert.NoError(t, lock.Unlock())
}

// TestTryLock_CreatedFileMode checks that a file created by taking the lock
// gets the same mode as one created with os.OpenFile and LockFilePerm.
func TestTryLock_CreatedFileMode(t *testing.T) {
	dir := t.TempDir()

	reference := filepath.Join(dir, "reference.txt")
	f, err := os.OpenFile(reference, os.O_CREATE|os.O_WRONLY, LockFilePerm)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	want, err := os.Stat(reference)
	require.NoError(t, err)

	path := filepath.Join(dir, "out.txt")
	lock := NewFileLock(path)
	acquired, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer lock.Unlock()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, want.Mode().Perm(), info.Mode().Perm())
}

func TestTryLock_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.txt")

	lock := NewFileLock(path)
	acquired, err := lock.TryLock()
	assert.Error(t, err)
	assert.False(t, acquired)
}

func TestAtomicWrite(t *testing.T) {
	t.Run("creates file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "history.yaml")

		require.NoError(t, AtomicWrite(path, []byte("entries: []\n")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "entries: []\n", string(data))
	})

	t.Run("replaces existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.yaml")
		require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0644))

		require.NoError(t, AtomicWrite(path, []byte("new")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "history.yaml")

		require.NoError(t, AtomicWrite(path, []byte("data")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "history.yaml", entries[0].Name())
	})

	t.Run("sets file permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.yaml")
		require.NoError(t, AtomicWrite(path, []byte("data")))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})
}
