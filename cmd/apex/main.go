package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/apex/internal/backup"
	"github.com/dukerupert/apex/internal/config"
	"github.com/dukerupert/apex/internal/database"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/logging"
	"github.com/dukerupert/apex/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	kvStore := kv.NewSQLiteStore(db, cfg.MaxStorageBytes)

	srv := server.New(db, kvStore, server.Config{
		PollInterval: cfg.PollInterval,
		Backup: backup.Config{
			Endpoint:   cfg.Backup.Endpoint,
			Bucket:     cfg.Backup.Bucket,
			Region:     cfg.Backup.Region,
			AccessKey:  cfg.Backup.AccessKey,
			SecretKey:  cfg.Backup.SecretKey,
			Passphrase: cfg.Backup.Passphrase,
			DBPath:     cfg.DBPath,
		},
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Scheduler().Start(ctx)
	defer srv.Scheduler().Stop()

	// Bound rate limiter memory over long uptimes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("apex running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
