package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tatianab/falliant/internal/config"
	"github.com/tatianab/falliant/internal/models"
	"github.com/tatianab/falliant/internal/sound"
	"github.com/tatianab/falliant/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()

	store, err := models.OpenStore(cfg.ScoreStore, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening score store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	player, err := sound.New(cfg.Sound)
	if err != nil {
		logger.Warn("sound disabled", "err", err)
	}
	defer player.Close()

	logger.Info("starting",
		"level", cfg.StartLevel,
		"randomizer", cfg.Randomizer,
		"store", cfg.ScoreStore,
		"data_dir", cfg.DataDir,
	)
	if err := tui.Run(tui.Options{Config: cfg, Store: store, Player: player, Logger: logger}); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// newLogger writes to path, since the terminal belongs to the UI. An empty
// path discards everything.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), func() { _ = f.Close() }, nil
}
