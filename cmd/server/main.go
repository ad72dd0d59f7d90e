package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallwar/wallwar-server/internal/config"
	"github.com/wallwar/wallwar-server/internal/logging"
	"github.com/wallwar/wallwar-server/internal/server"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting wallwar server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Int("rank_count", cfg.Game.RankCount),
		zap.Int("max_points", cfg.Game.MaxPoints),
		zap.String("computer_strategy", cfg.Computer.Strategy),
		zap.Duration("computer_delay", cfg.Computer.Delay),
	)
	if cfg.Game.Seed != 0 {
		logger.Warn("fixed seed configured; every game deals the same decks", zap.Uint64("seed", cfg.Game.Seed))
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case serveErr := <-errChan:
		if serveErr != nil {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}

	logger.Info("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WebSocket.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown did not complete cleanly", zap.Error(err))
	}

	logger.Info("wallwar server stopped")
}
