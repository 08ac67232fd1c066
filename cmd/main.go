package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strangerchat/backend/internal/api/handler"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/storage"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupDependencies connects the optional archive backends. Without DATABASE_DSN
// or REDIS_ADDR the server runs purely in memory.
func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	var db *gorm.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
	} else {
		log.Println("WARNING: DATABASE_DSN not set, rooms will not be archived")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
	} else {
		log.Println("WARNING: REDIS_ADDR not set, stats will not be published")
	}

	return db, rdb
}

func main() {
	log.Println("Starting Stranger Chat server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(db, rdb)
	if err := s.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	recorder := storage.NewRecorder(s, config.RecorderBufferSize)
	hub := chathub.NewManagerService(cfg.Chat, chathub.WithArchiver(recorder))
	sweeper := chathub.NewSweeper(hub, cfg.Chat.SweepInterval, cfg.Chat.StatsLogInterval)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(workerCtx)
		close(recorderDone)
	}()
	go sweeper.Run(workerCtx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	handler.NewHandler(hub, cfg).Routes(r)

	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on %s (environment: %s)", server.Addr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server shutdown: %v", err)
	}
	hub.Shutdown()
	stopWorkers()

	select {
	case <-recorderDone:
	case <-shutdownCtx.Done():
		log.Println("WARNING: archive recorder did not flush in time")
	}

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("Server stopped.")
}
