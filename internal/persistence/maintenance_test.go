package persistence

import (
	"context"
	"testing"

	"package-organizer/internal/adapters/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeStaleKeepsCurrentVersion(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	for _, k := range []string{KeyPackages, KeyDarkMode, "packages_v9", "darkMode_v9", "legacy"} {
		require.NoError(t, store.Set(ctx, k, "x"))
	}

	stale, err := StaleKeys(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"darkMode_v9", "legacy", "packages_v9"}, stale)

	purged, err := PurgeStale(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, stale, purged)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KeyPackages, KeyDarkMode}, keys)
}

func TestIsCurrentKey(t *testing.T) {
	assert.True(t, IsCurrentKey("packages_v10"))
	assert.False(t, IsCurrentKey("packages_v1"))
	assert.False(t, IsCurrentKey("packages_v100"))
}
