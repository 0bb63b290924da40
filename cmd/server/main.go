package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colchones/internal/config"
	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/repository"
	"colchones/internal/router"
	"colchones/internal/worker"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title                      Colchones back office API
// @version                    1.0
// @description                Ordenes, pagos, seguimiento y egresos de BoxiSleep y Mompox.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: console in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// E-mail worker pool. Delivery paths are wired here (composition root):
	// BoxiSleep through Resend when a key is configured, everything else SMTP.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smtp := infra.NewMailer(cfg)
	notificador := infra.NewNotificador(smtp).ConMarca(model.MarcaMompox, smtp)
	if cfg.ResendAPIKey != "" {
		notificador.ConMarca(model.MarcaBoxiSleep, infra.NewResendMailer(cfg.ResendAPIKey, cfg.ResendFrom))
	} else {
		log.Warn().Msg("RESEND_API_KEY vacio: BoxiSleep usara SMTP")
	}
	dispatcher := worker.NewDispatcher(rdb)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.NewEmailWorker(notificador))

	var cashea *infra.CasheaClient
	if cfg.CasheaAPIKey != "" {
		cashea = infra.NewCasheaClient(cfg.CasheaBaseURL, cfg.CasheaAPIKey, infra.NewCircuitBreaker(infra.DefaultCBConfig("cashea")))
	} else {
		log.Warn().Msg("CASHEA_API_KEY vacio: la sincronizacion con Cashea queda deshabilitada")
	}

	sched := worker.NewScheduler(cfg.Location(), infra.NewLocker(rdb), repository.NewEjecucionRepository(db))

	r := router.New(cfg, router.Deps{
		DB:        db,
		Redis:     rdb,
		Scheduler: sched,
		Cola:      dispatcher,
		Cashea:    cashea,
	})
	sched.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("tz", cfg.Location().String()).Msgf("colchones backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	// Waits for a running job, bounded by shutdownCtx.
	sched.Stop(shutdownCtx)
	cancel()
	log.Info().Msg("server exited")
}
