package environment

import (
	"context"
	"log/slog"
	"net/http"

	"anomonus-bot/internal/api"
	"anomonus-bot/internal/config"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		API           *http.Server
	}
}

func newServers(ctx context.Context, cfg config.Config, logger *slog.Logger, clients *Clients, services *Services) *Servers {
	var servers Servers

	if cfg.API.Enabled {
		servers.HTTP.API = &http.Server{
			Addr: cfg.API.ADDR(),
			Handler: api.NewRouter(services.APIHandler, api.RouterConfig{
				AllowedOrigins: cfg.API.AllowedOrigins,
				RequestTimeout: cfg.API.RequestTimeout,
			}, logger.WithGroup("api")),
			ReadTimeout:       cfg.API.ReadTimeout,
			WriteTimeout:      cfg.API.WriteTimeout,
			IdleTimeout:       cfg.API.IdleTimeout,
			ReadHeaderTimeout: cfg.API.ReadTimeout,
		}
	}

	servers.HTTP.Observability = initObservability(ctx, logger.WithGroup("http"), clients, cfg)

	return &servers
}
