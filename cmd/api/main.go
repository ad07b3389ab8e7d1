// Package main is the entry point for the rental API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/config"
	"github.com/pkordes/rental-api/internal/events"
	"github.com/pkordes/rental-api/internal/handler"
	"github.com/pkordes/rental-api/internal/logging"
	"github.com/pkordes/rental-api/internal/metrics"
	"github.com/pkordes/rental-api/internal/middleware"
	"github.com/pkordes/rental-api/internal/repo"
	"github.com/pkordes/rental-api/internal/service"
	"github.com/pkordes/rental-api/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections; the ping below does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), db)
		_ = db.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", applied)
	}

	// --- Events -----------------------------------------------------------
	var publisher events.Publisher = events.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			slog.Error("failed to connect to kafka", "error", err, "brokers", cfg.KafkaBrokers)
			os.Exit(1)
		}
		defer func() {
			if err := kafka.Close(); err != nil {
				slog.Warn("kafka producer close failed", "error", err)
			}
		}()
		publisher = kafka
		slog.Info("publishing booking events to kafka", "topic", cfg.KafkaTopic)
	}

	// --- Services ---------------------------------------------------------
	policy := authz.RequireAuthForWrite
	if cfg.EnforceOwnership {
		policy = authz.RequireOwner
	}
	slog.Info("authorization policy selected", "policy", policy.String())

	userRepo := repo.NewUserRepo(pool)
	listingRepo := repo.NewListingRepo(pool)
	bookingRepo := repo.NewBookingRepo(pool)
	reviewRepo := repo.NewReviewRepo(pool)

	listingSvc := service.NewListingService(listingRepo, bookingRepo, reviewRepo, policy)
	bookingSvc := service.NewBookingService(bookingRepo, listingRepo, policy, publisher, logger)
	reviewSvc := service.NewReviewService(reviewRepo, listingRepo, policy)

	api := handler.NewServer(listingSvc, bookingSvc, reviewSvc, pool, policy, logger)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, request logging, panic recovery,
	// CORS, body limit, metrics, then caller resolution.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetrics(metrics.NewHTTP(prometheus.DefaultRegisterer)))
	r.Use(middleware.NewAuthenticator(auth.NewVerifier([]byte(cfg.JWTSecret)), userRepo, logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", api.Handler())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
