package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/storage"
	"todo/internal/ui"
	"todo/internal/update"
)

// Populated at build time via -ldflags.
var version = "dev"

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			return mv
		}
	}
	return version
}

type flags struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	LogFile    string
}

func main() {
	f := &flags{}

	app := &cli.Command{
		Name:    "todo",
		Usage:   "A terminal to-do list",
		Version: buildVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (default from $TODO_CONFIG)",
				Value:       config.ResolveConfigPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory holding the task database and log (overrides db_path)",
				Sources:     cli.EnvVars("TODO_DATA_DIR"),
				Destination: &f.DataDir,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("TODO_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/todo.log)",
				Sources:     cli.EnvVars("TODO_LOG_FILE"),
				Destination: &f.LogFile,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, f)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags) error {
	cfg, err := config.LoadOrCreate(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.DataDir != "" {
		cfg.SetDataDir(f.DataDir)
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	logFile := f.LogFile
	if logFile == "" {
		logFile = cfg.LogPath()
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closeLog()
	log.Logger = logger

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	current := buildVersion()
	env := &ui.Env{
		Ctx:     ctx,
		Store:   store,
		Checker: update.NewChecker(cfg.Update.URL, current),
		Keys:    ui.NewKeyMap(cfg.Keys),
		Version: current,
	}

	accepted, err := ui.Run(ctx, env)
	if err != nil {
		return err
	}
	if accepted == nil {
		return nil
	}

	fmt.Printf("Updating %s -> %s...\n", accepted.Current, accepted.Latest)
	if err := update.Apply(ctx, nil, accepted); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Printf("Updated to %s\n", accepted.Latest)
	return nil
}
