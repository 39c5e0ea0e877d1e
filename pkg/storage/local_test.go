package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:5000/uploads/")
	require.NoError(t, err)

	resp, err := store.Upload(context.Background(), &UploadRequest{
		Key:         "audio/u1/clip.wav",
		Reader:      bytes.NewReader([]byte("RIFF")),
		ContentType: "audio/wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/audio/u1/clip.wav", resp.URL)
	assert.Equal(t, int64(4), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "audio", "u1", "clip.wav"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))

	require.NoError(t, store.Delete(context.Background(), "audio/u1/clip.wav"))
	_, err = os.Stat(filepath.Join(dir, "audio", "u1", "clip.wav"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	require.NoError(t, store.Delete(context.Background(), "audio/u1/clip.wav"))
}

func TestLocalStorageKeepsKeysInsideBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "base"), "http://x")
	require.NoError(t, err)

	resp, err := store.Upload(context.Background(), &UploadRequest{
		Key:    "../../escape.wav",
		Reader: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "base", "escape.wav"), resp.Location)
	assert.Equal(t, "escape.wav", resp.Key)
}
