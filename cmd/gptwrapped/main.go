package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/config"
	"gptwrapped/internal/db"
	httpx "gptwrapped/internal/http"
	"gptwrapped/internal/jobs"
	"gptwrapped/internal/stats"
	"gptwrapped/internal/wrapped"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("db connect failed", "err", err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatalw("db migrate failed", "err", err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	statsSvc := &stats.Service{DB: gdb, PageSize: cfg.StatsPageSize, Log: logger}
	gen := &wrapped.Generator{DB: gdb, Log: logger}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, statsSvc, gen)

	// worker
	worker := &jobs.Worker{
		ID:    "worker-1",
		Repo:  &jobs.Repo{DB: gdb},
		Stats: statsSvc,
		Cards: gen,
		Poll:  cfg.WorkerPoll,
		Log:   logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infow("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("http server failed", "err", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
