package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/cheatcodes/internal/api"
	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/config"
	"github.com/vytor/cheatcodes/internal/db"
	"github.com/vytor/cheatcodes/internal/jobs"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/repository/sqlite"
	"github.com/vytor/cheatcodes/internal/services"
	"github.com/vytor/cheatcodes/internal/webhook"
	"github.com/vytor/cheatcodes/internal/worker"
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
	loc, _ := cfg.Location()

	log.Info("===========================================")
	log.Info("Cheat Codes Coach Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", loc)
	log.Debug("sweep_worker_count=%d", cfg.SweepWorkerCount)
	log.Debug("sweep_queue_size=%d", cfg.SweepQueueSize)
	log.Debug("sweep_interval=%s", cfg.SweepInterval)
	log.Debug("notify_webhook=%t", cfg.NotifyWebhookURL != "")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	profiles := sqlite.NewProfileRepository(database.DB)
	states := sqlite.NewStateRepository(database.DB)
	techniques := sqlite.NewTechniqueRepository(database.DB)

	notifier := services.NewLogNotifier()
	if cfg.NotifyWebhookURL != "" {
		notifier = services.NewFanoutNotifier(notifier, webhook.New(cfg.NotifyWebhookURL))
	}

	profileService := services.NewProfileService(profiles, states)
	coachService := services.NewCoachService(
		profiles,
		states,
		techniques,
		notifier,
		clock.System{Location: loc},
		rand.New(rand.NewSource(cfg.Seed())),
		uuid.NewString,
	)

	sweepPool := worker.NewPool(cfg.SweepWorkerCount, cfg.SweepQueueSize)
	scheduler := jobs.NewScheduler(profiles, jobs.NewWorkerQueue(sweepPool, coachService), cfg.SweepInterval)

	srv := &api.Server{
		ProfileService: profileService,
		CoachService:   coachService,
		Health:         database,
	}

	// Workers run on their own context so queued sweeps drain on Stop even
	// after the scheduler has been cancelled.
	sweepPool.Start(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

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

	// Stop the scheduler before the pool so no sweep is submitted to a closed queue.
	cancel()
	<-schedulerDone
	log.Debug("stopping sweep pool")
	sweepPool.Stop()

	log.Info("===========================================")
	log.Info("Cheat Codes Coach Stopped")
	log.Info("===========================================")
}
