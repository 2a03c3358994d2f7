package environment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"anomonus-bot/internal/config"
	mapsiteAPI "anomonus-bot/internal/infra/mapsite"
	"anomonus-bot/internal/infra/filestore"
	"anomonus-bot/internal/infra/sqlite3"
	"anomonus-bot/internal/infra/telegram"
	"anomonus-bot/internal/storage"
	"anomonus-bot/internal/stories/legacy"
	"anomonus-bot/internal/stories/links"
	"anomonus-bot/internal/stories/reconcile"
)

const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
)

// Store is the persistence backend shared by the stories.
type Store interface {
	links.Storage
	legacy.Storage
	reconcile.Storage
	Ping(ctx context.Context) error
	Close() error
}

type Clients struct {
	Store       Store
	TelegramBot *telegram.Client
	MapSite     *mapsiteAPI.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	store, err := provideStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("provideStore: %w", err)
	}

	mapSite, err := provideMapSite(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("provideMapSite: %w", err)
	}

	telegramBot, err := provideTelegramBot(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("provideTelegramBot: %w", err)
	}

	return &Clients{
		Store:       store,
		TelegramBot: telegramBot,
		MapSite:     mapSite,
	}, nil
}

func provideStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case "", StorageDriverFile:
		store, err := filestore.Open(cfg.Storage.LinksPath, cfg.Storage.SubscribersPath, cfg.Storage.FailuresPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageDriverSQLite:
		db, err := provideSQLiteDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storage.New(db.DB), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	maxLifetimeStr := cfg.DB.MaxLifetime
	if maxLifetimeStr == "" {
		maxLifetimeStr = "5m"
	}
	maxLifetime, err := time.ParseDuration(maxLifetimeStr)
	if err != nil {
		return nil, fmt.Errorf("parse DB_MAX_LIFETIME: %w", err)
	}

	opts := []sqlite3.Option{
		sqlite3.WithPath(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(maxLifetime),
	}

	return sqlite3.New(ctx, opts...)
}

func provideMapSite(cfg config.Config, logger *slog.Logger) (*mapsiteAPI.Client, error) {
	return mapsiteAPI.NewClient(
		cfg.MapSite.BaseURL,
		cfg.MapSite.Platform,
		mapsiteAPI.WithHTTPClient(&http.Client{}),
		mapsiteAPI.WithTimeouts(cfg.MapSite.ReadTimeout, cfg.MapSite.WriteTimeout),
		mapsiteAPI.WithRateLimit(cfg.MapSite.RateLimit.RPS, cfg.MapSite.RateLimit.Burst),
		mapsiteAPI.WithLogger(logger.WithGroup("mapsite")),
	)
}

func provideTelegramBot(ctx context.Context, cfg config.Config, logger *slog.Logger) (*telegram.Client, error) {
	client, err := telegram.NewClient(ctx, cfg.Telegram.BotToken, telegram.ConnectConfig{
		MaxRetries:  cfg.Telegram.ConnectMaxRetries,
		BaseDelay:   cfg.Telegram.ConnectBaseDelay,
		MaxDelay:    cfg.Telegram.ConnectMaxDelay,
		HTTPTimeout: cfg.Telegram.Timeout,
	}, logger.WithGroup("telegram"))
	if err != nil {
		return nil, err
	}

	client.SetPollTimeout(cfg.Telegram.PollTimeout)
	return client, nil
}
