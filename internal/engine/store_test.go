package engine_test

import (
	"MuseLink/internal/engine"
	"MuseLink/internal/storage"
	types "MuseLink/pkg"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_Fetch_Inline(t *testing.T) {
	store := engine.NewStore(nil, types.RetryConfig{}, zap.NewNop())
	item := &engine.Item{
		Binary: map[string]*engine.Binary{
			"data": {Data: []byte("hello"), FileName: "a.wav"},
		},
	}

	got, err := store.Fetch(context.Background(), item, "data")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestStore_Fetch_Errors(t *testing.T) {
	store := engine.NewStore(nil, types.RetryConfig{}, zap.NewNop())

	tests := []struct {
		name string
		item *engine.Item
	}{
		{name: "missing property", item: &engine.Item{}},
		{name: "nil binary", item: &engine.Item{Binary: map[string]*engine.Binary{"data": nil}}},
		{name: "empty binary", item: &engine.Item{Binary: map[string]*engine.Binary{"data": {}}}},
		{name: "storage ref without backend", item: &engine.Item{Binary: map[string]*engine.Binary{"data": {Bucket: "b", Key: "k"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Fetch(context.Background(), tt.item, "data")
			require.Error(t, err)
		})
	}
}

func TestStore_Fetch_StorageBacked(t *testing.T) {
	backend, err := storage.NewLocalStorage(types.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	store := engine.NewStore(backend, types.RetryConfig{}, zap.NewNop())

	payload := []byte("stored audio bytes")
	bin, err := store.Offload(context.Background(), payload, "binaries", "item-1/audio.wav", "audio.wav", "audio/wav")
	require.NoError(t, err)
	assert.Empty(t, bin.Data)
	assert.Equal(t, "binaries", bin.Bucket)

	item := &engine.Item{Binary: map[string]*engine.Binary{"data": bin}}
	got, err := store.Fetch(context.Background(), item, "data")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_Attach(t *testing.T) {
	store := engine.NewStore(nil, types.RetryConfig{}, zap.NewNop())
	bin := store.Attach([]byte("video"), "out.mp4", "video/mp4")

	assert.Equal(t, []byte("video"), bin.Data)
	assert.Equal(t, "out.mp4", bin.FileName)
	assert.Equal(t, "video/mp4", bin.MimeType)
}
