package environment

import (
	"context"
	"fmt"
	"log/slog"

	"anomonus-bot/internal/config"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type closer func()

type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Servers  *Servers
	Clients  *Clients
	Services *Services

	Closers []closer
}

func Setup(ctx context.Context) (*Env, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg config.Config
	err := envconfig.Process(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("env processing: %w", err)
	}

	var e Env

	logger, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("newClients: %w", err)
	}
	logger.Info("Storage ready", slog.String("driver", cfg.Storage.Driver))

	services, err := newServices(ctx, clients, &cfg, logger)
	if err != nil {
		_ = clients.Store.Close()
		return nil, fmt.Errorf("newServices: %w", err)
	}

	// The legacy subscriber list is advisory and rebuilt by the website after
	// every restart.
	if _, err := services.Legacy.Clear(ctx); err != nil {
		_ = clients.Store.Close()
		return nil, fmt.Errorf("clear legacy subscribers: %w", err)
	}

	e.Servers = newServers(ctx, cfg, logger, clients, services)
	e.Config = &cfg
	e.Logger = logger
	e.Clients = clients
	e.Services = services
	e.Closers = []closer{
		clients.TelegramBot.Close,
		func() {
			if err := clients.Store.Close(); err != nil {
				logger.Error("Failed to close storage", slog.Any("error", err))
			}
		},
	}

	return &e, nil
}
