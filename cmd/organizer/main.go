package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"package-organizer/internal/app"
	"package-organizer/internal/cli"
	"package-organizer/internal/config"
	"package-organizer/internal/platform/obs"
	"package-organizer/internal/services"

	"github.com/alecthomas/kong"
)

// Globals is shared by every subcommand.
type Globals struct {
	EnvFile string `name:"env-file" help:"Optional .env file to load" default:".env" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Shell  ShellCmd  `cmd:"" default:"1" help:"Interactive organizer shell (default)"`
	Status StatusCmd `cmd:"" help:"Print zones and delivery progress"`
	Zones  ZonesCmd  `cmd:"" help:"List configured zones"`
	Export ExportCmd `cmd:"" help:"Write a backup document"`
	Import ImportCmd `cmd:"" help:"Load a backup document"`
	Reset  ResetCmd  `cmd:"" help:"Clear all assignments and delivered marks"`
}

// session is an opened organizer and the storage behind it.
type session struct {
	org     *services.Organizer
	storage *app.Storage
}

func (s *session) Close() {
	s.org.Wait()
	if err := s.storage.Close(); err != nil {
		slog.Warn("close storage", obs.Error(err))
	}
}

func (g *Globals) open(ctx context.Context) (*session, services.Result, error) {
	config.LoadEnv(g.EnvFile)

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, services.Result{}, err
	}
	level := cfg.LogLevel
	if g.Verbose {
		level = "debug"
	}
	logger := obs.NewLogger(os.Stderr, cfg.LogFormat, level)
	slog.SetDefault(logger)

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, services.Result{}, err
	}
	org, err := app.NewOrganizer(cfg, storage.Store, logger, nil)
	if err != nil {
		_ = storage.Close()
		return nil, services.Result{}, err
	}
	return &session{org: org, storage: storage}, org.Load(ctx), nil
}

type ShellCmd struct{}

func (c *ShellCmd) Run(ctx context.Context, g *Globals) error {
	s, res, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if res.FirstRun {
		fmt.Println("Welcome! Type help for a list of commands.")
	}
	sh := cli.NewShell(s.org, os.Stdout)
	sh.Exec(ctx, "status")
	return sh.Run(ctx, os.Stdin)
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, g *Globals) error {
	s, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cli.NewShell(s.org, os.Stdout).Exec(ctx, "status")
	return nil
}

type ZonesCmd struct{}

func (c *ZonesCmd) Run(ctx context.Context, g *Globals) error {
	s, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cli.NewShell(s.org, os.Stdout).Exec(ctx, "zones")
	return nil
}

type ExportCmd struct {
	Out string `arg:"" optional:"" help:"Destination file; defaults to package-organizer-YYYY-MM-DD.json, '-' for stdout"`
}

func (c *ExportCmd) Run(ctx context.Context, g *Globals) error {
	s, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, name, err := s.org.Export(ctx)
	if err != nil {
		return err
	}
	if c.Out == "-" {
		_, err = os.Stdout.Write(append(doc, '\n'))
		return err
	}
	if c.Out != "" {
		name = c.Out
	}
	if err := os.WriteFile(name, doc, 0o644); err != nil {
		return fmt.Errorf("export: write %q: %w", name, err)
	}
	fmt.Println("exported to", name)
	return nil
}

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Backup document to load"`
}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	s, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("import: read %q: %w", c.File, err)
	}
	res := s.org.Import(ctx, doc)
	if err := reportNotices(res); err != nil {
		return err
	}
	cli.NewShell(s.org, os.Stdout).Exec(ctx, "status")
	return nil
}

type ResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

func (c *ResetCmd) Run(ctx context.Context, g *Globals) error {
	if !c.Yes {
		return fmt.Errorf("reset: refusing to clear all packages without --yes")
	}
	s, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return reportNotices(s.org.Reset(ctx))
}

// reportNotices prints notices and turns a rejected or failed intent into an error.
func reportNotices(res services.Result) error {
	var failed bool
	for _, n := range res.Notices {
		fmt.Fprintf(os.Stderr, "%s: %s\n", n.Level, n.Message)
		if n.Level == services.LevelError {
			failed = true
		}
	}
	if res.Rejected || failed {
		return fmt.Errorf("operation did not complete")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c CLI
	kctx := kong.Parse(&c,
		kong.Name("organizer"),
		kong.Description("Sort numbered packages into vehicle zones and track deliveries."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run(&c.Globals))
}
