package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	environment "anomonus-bot/internal/env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting anomonus-bot")

	serve(logger, "observability", env.Servers.HTTP.Observability)
	serve(logger, "api", env.Servers.HTTP.API)

	dispatched, err := startTelegramBot(ctx, env)
	if err != nil {
		logger.Error("Failed to start telegram bot", slog.Any("error", err))
		shutdown(env)
		return
	}

	if err := env.Services.WorkerService.Start(); err != nil {
		logger.Error("Failed to start worker service", slog.Any("error", err))
		stop()
		<-dispatched
		shutdown(env)
		return
	}

	logger.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	logger.Info("Shutting down application...")

	env.Clients.TelegramBot.Stop()
	<-dispatched

	env.Services.WorkerService.Stop()
	shutdown(env)

	logger.Info("Application stopped")
}

func serve(logger *slog.Logger, name string, srv *http.Server) {
	if srv == nil {
		return
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("server", name), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.String("server", name), slog.Any("error", err))
		}
	}()
}

func shutdown(env *environment.Env) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer cancel()

	for _, srv := range []*http.Server{env.Servers.HTTP.API, env.Servers.HTTP.Observability} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Logger.Error("HTTP server shutdown error", slog.String("addr", srv.Addr), slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}
}

// startTelegramBot begins polling. The returned channel is closed once the
// dispatcher has finished every accepted update.
func startTelegramBot(ctx context.Context, env *environment.Env) (<-chan struct{}, error) {
	logger := env.Logger

	if err := env.Clients.TelegramBot.Start(ctx); err != nil {
		return nil, fmt.Errorf("start telegram client: %w", err)
	}

	if err := env.Services.TelegramRouter.SetupBotCommands(); err != nil {
		logger.Error("Failed to setup bot commands", slog.Any("error", err))
	} else {
		logger.Info("Bot commands set up successfully")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.Services.Dispatcher.Run(ctx, env.Clients.TelegramBot.GetUpdates())
	}()

	logger.Info("Listening for updates", slog.Int("workers", env.Config.Telegram.Workers))
	return done, nil
}
