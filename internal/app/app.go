// Package app wires configuration to concrete adapters. Every binary builds its
// storage and organizer through here so they agree on drivers and schema.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"package-organizer/internal/adapters/feedback"
	"package-organizer/internal/adapters/kvstore"
	"package-organizer/internal/config"
	"package-organizer/internal/persistence"
	"package-organizer/internal/platform/db"
	"package-organizer/internal/platform/metrics"
	"package-organizer/internal/ports"
	"package-organizer/internal/services"

	"github.com/redis/go-redis/v9"
)

// Storage is an opened key-value store together with whatever must be closed on exit.
type Storage struct {
	Store ports.KeyValueStore
	// Raw is the store before the quota wrapper is applied.
	Raw    ports.KeyValueStore
	closer func() error
}

func (s *Storage) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// OpenStorage opens the store selected by cfg.StoreDriver and ensures its schema exists.
// A positive cfg.QuotaBytes caps the total size of stored values.
func OpenStorage(ctx context.Context, cfg config.Config) (*Storage, error) {
	raw, closer, err := openRaw(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st := &Storage{Store: raw, Raw: raw, closer: closer}
	if cfg.QuotaBytes > 0 {
		st.Store = kvstore.NewQuotaStore(raw, cfg.QuotaBytes)
	}

	slog.InfoContext(ctx, "storage ready", "driver", cfg.StoreDriver, "quota_bytes", cfg.QuotaBytes)
	return st, nil
}

func openRaw(ctx context.Context, cfg config.Config) (ports.KeyValueStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return kvstore.NewMemoryStore(), nil, nil

	case config.DriverSqlite:
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, nil, fmt.Errorf("open storage: create data dir: %w", err)
			}
		}
		conn, err := db.OpenSqlite(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		if err := kvstore.InitSqliteSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return kvstore.NewSqliteStore(conn), conn.Close, nil

	case config.DriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		if err := kvstore.InitSQLSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return kvstore.NewSQLStore(conn), conn.Close, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("open storage: ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return kvstore.NewRedisStore(client, cfg.RedisPrefix), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("open storage: unknown driver %q", cfg.StoreDriver)
	}
}

// NewOrganizer builds an Organizer over the given store. It does not load state.
func NewOrganizer(cfg config.Config, store ports.KeyValueStore, logger *slog.Logger, m *metrics.Metrics) (*services.Organizer, error) {
	layout, err := config.LoadLayout(cfg.ZonesFile)
	if err != nil {
		return nil, err
	}

	gw := persistence.NewGateway(store, layout)
	return services.NewOrganizer(gw, services.Options{
		Layout:   layout,
		Feedback: feedback.New(cfg.Feedback, logger),
		Metrics:  m,
	}), nil
}
