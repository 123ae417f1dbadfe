package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/commands"
	"github.com/sadopc/studytrack/internal/config"
	"github.com/sadopc/studytrack/internal/logging"
	"github.com/sadopc/studytrack/internal/notify"
	"github.com/sadopc/studytrack/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()
	log.Debug("database opened", slog.String("path", cfg.DBPath))

	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	commands.SetVersion(version, commit, date)
	return commands.Execute(commands.Env{
		Store:     s,
		Engine:    analytics.New(analytics.SystemClock{}),
		Notifier:  notify.New(cfg.Notifications, log),
		Log:       log,
		ExportDir: exportDir,
	})
}
