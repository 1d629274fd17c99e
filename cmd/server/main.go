package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwalczyk/socialfeed/internal/auth"
	"github.com/mwalczyk/socialfeed/internal/config"
	"github.com/mwalczyk/socialfeed/internal/domain"
	"github.com/mwalczyk/socialfeed/internal/httpserver"
	"github.com/mwalczyk/socialfeed/internal/imaging"
	"github.com/mwalczyk/socialfeed/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Repository implements both PostRepository and AccountRepository.
	repo, err := sqlite.NewRepository(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer repo.Close()
	logger.Info("database ready", "path", cfg.DatabasePath)

	tokens := auth.NewTokenCodec(cfg.SessionSecret)
	guard := auth.NewGuard(tokens)
	photos := imaging.NewValidator()

	feed := domain.NewFeedService(repo, guard, photos, logger)
	accounts := domain.NewAccountService(repo, tokens, guard, auth.NewPasswordHasher(), photos, logger)

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := httpserver.NewServer(cfg, feed, accounts, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
