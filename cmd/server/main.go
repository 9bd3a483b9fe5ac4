package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Flashdeck Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("autosave_quiet_period=%s", cfg.AutosaveQuietPeriod)
	log.Debug("flush_worker_count=%d", cfg.FlushWorkerCount)
	log.Debug("flush_queue_size=%d", cfg.FlushQueueSize)
	log.Debug("session_idle_ttl=%s", cfg.SessionIdleTTL)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Autosave flushes and idle-session sweeps share one pool.
	pool := worker.NewPool(cfg.FlushWorkerCount, cfg.FlushQueueSize)
	queue := jobs.NewWorkerQueue(pool)

	deckService := services.NewDeckService(
		sqlite.NewDeckRepository(database.DB),
		sqlite.NewCardRepository(database.DB),
		time.Now,
	)
	studyService := services.NewStudyService(deckService, services.StudyConfig{
		QuietPeriod: cfg.AutosaveQuietPeriod,
		Submit:      queue.SubmitFlush,
	})

	srv := &api.Server{
		DeckService:    deckService,
		StudyService:   studyService,
		DB:             database,
		RequestTimeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	go sweepSessions(ctx, log, queue, studyService, cfg.SessionSweepEvery, cfg.SessionIdleTTL)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Sessions flush inline on close, so this must run while the DB is open.
	log.Debug("closing study sessions")
	if err := studyService.CloseAll(shutdownCtx); err != nil {
		log.Error("final flush failed for some sessions: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Flashdeck Server Stopped")
	log.Info("===========================================")
}

// sweepSessions queues an idle-session sweep on every tick until ctx is done.
func sweepSessions(ctx context.Context, log *logger.Logger, queue jobs.JobQueue, studies services.StudyService, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := queue.EnqueueSweep(studies, ttl); err != nil {
				log.Warn("skipping session sweep: %v", err)
			}
		}
	}
}
