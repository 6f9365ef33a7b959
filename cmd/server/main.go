package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/config"
	"github.com/givingprint/payment-service/internal/infrastructure/database"
	grpcServer "github.com/givingprint/payment-service/internal/infrastructure/grpc"
	httpServer "github.com/givingprint/payment-service/internal/infrastructure/http"
	"github.com/givingprint/payment-service/internal/usecase"
	"github.com/givingprint/payment-service/pkg/logger"
	"github.com/givingprint/payment-service/pkg/messaging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, cfg.Service.Backend, zapLogger)

	// Status change notifications are best-effort: without Redis the
	// service still reconciles payments, it just stops broadcasting.
	publisher := usecase.NewNoopStatusPublisher()
	if cfg.Redis.Addr != "" {
		redisClient, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Warn("Redis unavailable, status notifications disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			publisher = usecase.NewRedisStatusPublisher(redisClient, zapLogger)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, repos, publisher)

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
