// Package main provides the quest server binary: it loads content, opens the
// store, wires the battle and quest services and serves gRPC health checks
// until it receives a termination signal.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/herobound/internal/app"
	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/observability"
	"github.com/cory-johannsen/herobound/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting quest server",
		zap.String("grpc_addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	game, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building game services", zap.Error(err))
	}
	defer func() {
		if err := game.Close(); err != nil {
			logger.Warn("closing game services", zap.Error(err))
		}
	}()

	healthSrv := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	grpcSvc, err := server.NewGRPCService(cfg.Server.Addr(), grpcServer, logger)
	if err != nil {
		logger.Fatal("binding gRPC listener", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("grpc", grpcSvc)
	lifecycle.Add("store-health", server.NewHealthMonitor(game.Store, healthSrv, cfg.Server.HealthInterval, logger))

	logger.Info("quest server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("quests", len(game.Content.Quests.All())),
		zap.Int("monsters", game.Content.Monsters.Len()),
		zap.String("grpc_addr", grpcSvc.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("quest server stopped with error", zap.Error(err))
	}
}
