package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"package-organizer/internal/adapters/kvstore"
	"package-organizer/internal/app"
	"package-organizer/internal/config"
	"package-organizer/internal/persistence"
	"package-organizer/internal/platform/obs"

	"github.com/alecthomas/kong"
)

// dbtool inspects and maintains the organizer key-value store for any configured driver.
type CLI struct {
	EnvFile string `name:"env-file" help:"Optional .env file to load" default:".env" type:"path"`

	Init  InitCmd  `cmd:"" help:"Create the backing table (sqlite, postgres) and verify connectivity"`
	Keys  KeysCmd  `cmd:"" help:"List stored keys"`
	Usage UsageCmd `cmd:"" help:"Show bytes used against the storage quota"`
	Purge PurgeCmd `cmd:"" help:"Delete keys written by other format versions"`
}

func (c *CLI) openStorage(ctx context.Context) (*app.Storage, config.Config, error) {
	if !config.LoadEnv(c.EnvFile) {
		slog.Info("no .env file found, using environment variables")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, cfg, err
	}
	slog.SetDefault(obs.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel))

	st, err := app.OpenStorage(ctx, cfg)
	return st, cfg, err
}

type InitCmd struct{}

func (c *InitCmd) Run(ctx context.Context, root *CLI) error {
	st, cfg, err := root.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	slog.Info("schema ready", "driver", cfg.StoreDriver)
	return nil
}

type KeysCmd struct {
	Values bool `help:"Print values next to key names"`
}

func (c *KeysCmd) Run(ctx context.Context, root *CLI) error {
	st, _, err := root.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	keys, err := st.Raw.Keys(ctx)
	if err != nil {
		return err
	}
	slices.Sort(keys)
	for _, k := range keys {
		marker := " "
		if !persistence.IsCurrentKey(k) {
			marker = "~"
		}
		if !c.Values {
			fmt.Printf("%s %s\n", marker, k)
			continue
		}
		v, _, err := st.Raw.Get(ctx, k)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", marker, k, v)
	}
	return nil
}

type UsageCmd struct{}

func (c *UsageCmd) Run(ctx context.Context, root *CLI) error {
	st, cfg, err := root.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	used, err := kvstore.NewQuotaStore(st.Raw, cfg.QuotaBytes).Usage(ctx)
	if err != nil {
		return err
	}
	if cfg.QuotaBytes > 0 {
		fmt.Printf("%d of %d bytes used (%.1f%%)\n", used, cfg.QuotaBytes, 100*float64(used)/float64(cfg.QuotaBytes))
		return nil
	}
	fmt.Printf("%d bytes used (no quota)\n", used)
	return nil
}

type PurgeCmd struct {
	DryRun bool `name:"dry-run" help:"Only list the keys that would be deleted"`
}

func (c *PurgeCmd) Run(ctx context.Context, root *CLI) error {
	st, _, err := root.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if c.DryRun {
		stale, err := persistence.StaleKeys(ctx, st.Raw)
		if err != nil {
			return err
		}
		for _, k := range stale {
			fmt.Println(k)
		}
		return nil
	}

	purged, err := persistence.PurgeStale(ctx, st.Raw)
	fmt.Printf("purged %d keys\n", len(purged))
	return err
}

func main() {
	var c CLI
	kctx := kong.Parse(&c,
		kong.Name("dbtool"),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run(&c))
}
