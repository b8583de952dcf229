package storage

import (
	types "MuseLink/pkg"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	store, err := NewLocalStorage(types.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	payload := []byte("some video bytes")
	require.NoError(t, store.Upload(context.Background(), "bucket", "nested/key.mp4", bytes.NewReader(payload)))

	got, err := store.Download(context.Background(), "bucket", "nested/key.mp4")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(types.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "bucket", "missing.mp4")
	require.Error(t, err)
}

func TestLocalStorage_RequiresBasePath(t *testing.T) {
	_, err := NewLocalStorage(types.LocalConfig{})
	require.Error(t, err)
}
