package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorageRoundTrip(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir())

	path, err := storage.UploadFileFromReader(strings.NewReader("point x,point y\n-73.95,40.78\n"), "event.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "event.csv"))

	exists, err := storage.FileExists("event.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	file, err := storage.DownloadFile("event.csv")
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, file.Close())
	require.NoError(t, err)
	assert.Equal(t, "point x,point y\n-73.95,40.78\n", string(content))

	require.NoError(t, storage.DeleteFile("event.csv"))
	exists, err = storage.FileExists("event.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a file that is already gone is not an error.
	require.NoError(t, storage.DeleteFile("event.csv"))
}

func TestCleanupExpiredArchives(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalFileStorage(dir)

	_, err := storage.UploadFileFromReader(strings.NewReader("old"), "old.csv")
	require.NoError(t, err)
	_, err = storage.UploadFileFromReader(strings.NewReader("new"), "new.csv")
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), stale, stale))

	require.NoError(t, CleanupExpiredArchives(storage, dir, 24*time.Hour))

	exists, err := storage.FileExists("old.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = storage.FileExists("new.csv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCleanupExpiredArchivesMissingDir(t *testing.T) {
	storage := NewLocalFileStorage("./does-not-exist")
	require.NoError(t, CleanupExpiredArchives(storage, "./does-not-exist", time.Hour))
}
