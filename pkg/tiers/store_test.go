package tiers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyDefaults(t *testing.T) {
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	profile, err := store.Profile()
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Version)
	assert.Empty(t, profile.Text)

	digest, err := store.Digest()
	require.NoError(t, err)
	assert.Equal(t, 0, digest.Version)
	assert.Empty(t, digest.LastSourceDate)
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	saved := &Profile{
		Version:     3,
		Status:      StatusCurrent,
		LastUpdated: time.Now().UTC(),
		WordCount:   2,
		Text:        "durable facts",
	}
	require.NoError(t, store.SaveProfile(saved))
	require.NoError(t, store.Close())

	// Fresh store reads from disk
	reopened, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Profile()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "durable facts", got.Text)
}

func TestStore_ExternalEditInvalidatesCache(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveDigest(&RollingDigest{
		Version: 1,
		Status:  StatusCurrent,
		Text:    "original",
	}))

	// Simulate an edit from outside the process
	edited, err := json.Marshal(&RollingDigest{
		Version: 2,
		Status:  StatusCurrent,
		Text:    "edited on disk",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, digestFile), edited, 0644))

	assert.Eventually(t, func() bool {
		digest, err := store.Digest()
		return err == nil && digest.Text == "edited on disk"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStore_OwnSaveDoesNotInvalidateCache(t *testing.T) {
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveProfile(&Profile{Version: 1, Text: "fresh"}))

	// The save's own rename event must not evict the record so the next
	// read is served from cache, not a disk reload
	assert.Never(t, func() bool {
		store.mu.RLock()
		defer store.mu.RUnlock()
		return !store.profileLoaded
	}, 500*time.Millisecond, 20*time.Millisecond)
}

func TestStore_FlushRewritesLoadedRecords(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveProfile(&Profile{Version: 1, Text: "cached"}))

	// Mutate only the cached copy, then flush it through to disk
	store.mu.Lock()
	store.profile.Text = "flushed from cache"
	store.mu.Unlock()
	require.NoError(t, store.Flush())

	data, err := os.ReadFile(filepath.Join(dir, profileFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "flushed from cache")
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveProfile(&Profile{Version: 1, Text: "original"}))

	first, err := store.Profile()
	require.NoError(t, err)
	first.Text = "mutated by caller"

	second, err := store.Profile()
	require.NoError(t, err)
	assert.Equal(t, "original", second.Text)
}
