package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucaCambi77/valr/internal/api"
	"github.com/lucaCambi77/valr/internal/bootstrap"
	"github.com/lucaCambi77/valr/pkg/config"
	"github.com/lucaCambi77/valr/pkg/grpclib/health"
	"github.com/lucaCambi77/valr/pkg/logger"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	b := &bootstrap.Bootstrap{}
	if err := b.Init(ctx, bootstrap.BootstrapConfig{Config: cfg, Logger: appLogger}); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "bootstrap"})
		os.Exit(1)
	}
	defer b.Close()

	if err := b.Engine.Start(ctx); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "start_engine"})
		os.Exit(1)
	}

	// gRPC health
	healthServer := health.NewServer()
	healthServer.InitService(cfg.App.Name)
	grpcServer := grpc.NewServer()
	healthServer.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.App.GRPCPort))
	if err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "listen_grpc"})
		os.Exit(1)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error(err, logger.Field{Key: "action", Value: "serve_grpc"})
		}
	}()

	// HTTP
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           api.NewHandler(b.Usecase.Publishing, b.HealthCheck(), appLogger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(err, logger.Field{Key: "action", Value: "serve_http"})
			stop()
		}
	}()

	appLogger.Info("Exchange started",
		logger.Field{Key: "name", Value: cfg.App.Name},
		logger.Field{Key: "environment", Value: cfg.App.Environment},
		logger.Field{Key: "httpPort", Value: cfg.App.HTTPPort},
		logger.Field{Key: "grpcPort", Value: cfg.App.GRPCPort},
	)

	<-ctx.Done()
	appLogger.Info("Shutting down exchange...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	healthServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "shutdown_http"})
	}
	if err := b.Engine.Stop(shutdownCtx); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "stop_engine"})
	}
	grpcServer.GracefulStop()

	appLogger.Info("Exchange stopped")
}
