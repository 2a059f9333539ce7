package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"
)

// IsCurrentKey reports whether key belongs to the current format version.
func IsCurrentKey(key string) bool {
	return strings.HasSuffix(key, "_"+Version)
}

// StaleKeys lists keys left behind by other format versions, sorted.
func StaleKeys(ctx context.Context, store ports.KeyValueStore) ([]string, error) {
	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("stale keys: %w", err)
	}

	var stale []string
	for _, k := range keys {
		if !IsCurrentKey(k) {
			stale = append(stale, k)
		}
	}
	slices.Sort(stale)
	return stale, nil
}

// PurgeStale deletes every stale key and returns the deleted names.
// Keys of the current version are never touched.
func PurgeStale(ctx context.Context, store ports.KeyValueStore) (_ []string, err error) {
	defer obs.Time(ctx, "persistence.PurgeStale")(&err)

	stale, err := StaleKeys(ctx, store)
	if err != nil {
		return nil, err
	}

	for i, k := range stale {
		if err := store.Delete(ctx, k); err != nil {
			return stale[:i], fmt.Errorf("purge stale: delete %q: %w", k, err)
		}
		slog.InfoContext(ctx, "purged stale key", obs.StorageKey(k))
	}
	return stale, nil
}
