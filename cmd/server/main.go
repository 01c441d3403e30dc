package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/farhapartex/food-search-proxy/internal/config"
	grpcServer "github.com/farhapartex/food-search-proxy/internal/grpc"
	"github.com/farhapartex/food-search-proxy/internal/handlers"
	"github.com/farhapartex/food-search-proxy/internal/httpserver"
	"github.com/farhapartex/food-search-proxy/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("http_port", cfg.Server.HTTPPort).
		Str("grpc_port", cfg.Server.GRPCPort).
		Bool("grpc_enabled", cfg.Server.GRPCEnabled).
		Dur("server_timeout", cfg.Server.ServerTimeout).
		Dur("upstream_timeout", cfg.Performance.UpstreamTimeout).
		Bool("token_cache", cfg.Performance.TokenCacheEnabled).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searchHandler := handlers.NewSearchHandlerFromConfig(cfg)

	errCh := make(chan error, 2)
	running := 1

	go func() {
		errCh <- httpserver.NewServer(cfg, searchHandler).Run(ctx)
	}()

	if cfg.Server.GRPCEnabled {
		running++
		srv, healthServer := grpcServer.NewGRPCServer(cfg, searchHandler)
		go func() {
			errCh <- grpcServer.Serve(ctx, srv, healthServer, cfg.GRPCAddr())
		}()
	}

	var exitErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && exitErr == nil {
			exitErr = err
			log.Error().Err(err).Msg("Server failed, shutting down")
			stop()
		}
	}

	if exitErr != nil {
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}
