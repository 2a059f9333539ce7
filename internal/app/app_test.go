package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"package-organizer/internal/adapters/kvstore"
	"package-organizer/internal/config"
	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorageDrivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{StoreDriver: config.DriverMemory}},
		{"sqlite", config.Config{StoreDriver: config.DriverSqlite, DBPath: filepath.Join(t.TempDir(), "data", "org.db")}},
		{"redis", config.Config{StoreDriver: config.DriverRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st, err := OpenStorage(ctx, tt.cfg)
			require.NoError(t, err)
			defer st.Close()

			require.NoError(t, st.Store.Set(ctx, "k_v10", "v"))
			v, ok, err := st.Raw.Get(ctx, "k_v10")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", v)
		})
	}
}

func TestOpenStorageAppliesQuota(t *testing.T) {
	ctx := context.Background()
	st, err := OpenStorage(ctx, config.Config{StoreDriver: config.DriverMemory, QuotaBytes: 8})
	require.NoError(t, err)

	_, wrapped := st.Store.(*kvstore.QuotaStore)
	assert.True(t, wrapped)

	err = st.Store.Set(ctx, "key", "too long for the quota")
	assert.True(t, errors.Is(err, ports.ErrQuotaExceeded))
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), config.Config{StoreDriver: "floppy"})
	assert.Error(t, err)
}

func TestNewOrganizerUsesZonesFile(t *testing.T) {
	ctx := context.Background()
	logger := obs.NewLogger(io.Discard, "text", "error")

	_, err := NewOrganizer(config.Config{ZonesFile: filepath.Join(t.TempDir(), "missing.yaml")}, kvstore.NewMemoryStore(), logger, nil)
	assert.Error(t, err)

	org, err := NewOrganizer(config.Config{Feedback: "none"}, kvstore.NewMemoryStore(), logger, nil)
	require.NoError(t, err)
	res := org.Load(ctx)
	assert.Len(t, res.Snapshot.Zones, 5)
}
