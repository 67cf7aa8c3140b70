package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"packhouse/internal/audit"
	"packhouse/internal/commons"
	"packhouse/internal/identity"
	"packhouse/internal/infrastructure/logger"
	"packhouse/internal/infrastructure/mysql"
	"packhouse/internal/inventory"
	"packhouse/internal/notify"
	"packhouse/internal/order"
	"packhouse/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	auditor := audit.NewZapSink(zapLogger)
	resolver := identity.NewFallbackResolver()
	notifier := notify.NewLogNotifier(zapLogger)

	orderModule := order.NewModule(db, cfg, zapLogger, notifier, auditor, resolver)
	inventoryModule := inventory.NewModule(db, cfg, zapLogger, auditor, resolver)

	router := server.NewRouter(orderModule, inventoryModule, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
