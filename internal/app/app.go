package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/config"
	"github.com/five82/odo/internal/ui"
)

// Options configure the odo application. Zero values keep the config file's
// settings.
type Options struct {
	ConfigPath string
	PollEvery  int    // seconds
	Debug      bool   // log at debug level
	Appearance string // auto, dark or light
}

// Run boots odo until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	client, err := api.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	logger.Info("odo starting",
		"api", client.BaseURL(),
		"appearance", string(cfg.Appearance),
		"poll_seconds", cfg.PollSeconds,
	)

	root := Compose(Deps{
		Context:    ctx,
		Config:     cfg,
		Backend:    client,
		SystemDark: systemDark(cfg.Appearance),
		Logger:     logger,
	})
	defer root.Close()

	if err := ui.Run(ctx, root.UI); err != nil {
		logger.Error("ui exited", "error", err)
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("odo stopped")
	return nil
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollSeconds = opts.PollEvery
	}
	if opts.Debug {
		cfg.LogLevel = slog.LevelDebug
	}
	if opts.Appearance != "" {
		appearance, err := config.ParseAppearance(opts.Appearance)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Appearance = appearance
	}
	return cfg, nil
}
