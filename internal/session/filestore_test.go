package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/series"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	sessions := []GenerationSession{
		{
			ID:        "session-1",
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Results: []series.Outcome{
				{Metadata: series.Metadata{BasePrompt: "a red sneaker", Quantity: 3, Successful: 3}},
			},
			SavedImages: []string{"image-abc"},
		},
	}
	require.NoError(t, store.Save(context.Background(), sessions))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "session-1", loaded[0].ID)
	assert.Equal(t, []string{"image-abc"}, loaded[0].SavedImages)
	assert.Equal(t, "a red sneaker", loaded[0].Results[0].Metadata.BasePrompt)
}

func TestFileStoreMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}
