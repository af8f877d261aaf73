package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"presyo-tracker/internal/alerting"
	"presyo-tracker/internal/collector"
	"presyo-tracker/internal/config"
	"presyo-tracker/internal/fetcher"
	"presyo-tracker/internal/registry"
	"presyo-tracker/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config   *config.Config
	Registry *registry.Registry
	Logger   zerolog.Logger
}

// NewApp constructs the application handle. The registry is validated here
// so a broken region/category mapping fails before any command runs.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	reg := registry.Default()
	if err := reg.ApplyOverrides(cfg.Source.CategoryPaths, cfg.Source.RegionParams); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Registry: reg,
		Logger:   logger.With().Str("component", "app").Logger(),
	}, nil
}

func (a *App) newCollector() *collector.Collector {
	client := fetcher.NewClient(fetcher.Options{
		BaseURL:        a.Config.Source.BaseURL,
		RegionQueryKey: a.Config.Source.RegionQueryKey,
		UserAgent:      a.Config.Source.UserAgent,
		Timeout:        a.Config.Source.RequestTimeout,
		PoliteDelay:    a.Config.Source.PoliteDelay,
	}, a.Logger)

	return collector.New(client, collector.Options{
		Concurrency:  a.Config.Scrape.Concurrency,
		RetryBackoff: a.Config.Source.RetryBackoff,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}
