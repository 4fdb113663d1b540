// Package main is the entry point for the Trip Sentinel API server.
// Its sole responsibility is wiring dependencies together and starting the
// server and the heartbeat loop. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/mfeldt/trip-sentinel/internal/adapters/googlemaps"
	"github.com/mfeldt/trip-sentinel/internal/adapters/openweather"
	"github.com/mfeldt/trip-sentinel/internal/config"
	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/handler"
	"github.com/mfeldt/trip-sentinel/internal/middleware"
	"github.com/mfeldt/trip-sentinel/internal/repo"
	"github.com/mfeldt/trip-sentinel/internal/service"
	"github.com/mfeldt/trip-sentinel/migrations"
)

// maxBodyBytes caps incoming request bodies; itinerary documents are the
// largest payload and stay well under this.
const maxBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a local-development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
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

	if err := migrateUp(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Providers --------------------------------------------------------
	maps, err := googlemaps.NewClient(cfg.GoogleMapsAPIKey)
	if err != nil {
		slog.Error("failed to create maps client", "error", err)
		os.Exit(1)
	}
	weather, err := openweather.NewClient(cfg.OpenWeatherAPIKey)
	if err != nil {
		slog.Error("failed to create weather client", "error", err)
		os.Exit(1)
	}

	// --- Core wiring ------------------------------------------------------
	// The lock table is shared between the API-facing services and the
	// heartbeat loop so every trip mutation serializes per trip.
	store := repo.NewTripStateRepo(pool)
	locks := service.NewTripLocks()
	machine := service.NewStateMachine(
		cfg.Monitor.ArriveRadiusM,
		cfg.Monitor.UncertainRadiusM,
		cfg.Monitor.DwellThreshold,
	)
	eta := service.NewETACalculator(maps, cfg.Monitor.DriftAlertMin, logger)
	guard := service.NewGuard(cfg.Monitor.Cooldown)
	heartbeat := service.NewHeartbeat(store, machine, eta, weather, guard, locks, logger)
	trips := service.NewTripService(store, locks)
	corridor := service.NewCorridorSearch(
		maps, maps,
		cfg.Monitor.CorridorRadiusM,
		cfg.Monitor.CorridorMaxWaypoints,
		cfg.Monitor.CorridorMaxCandidates,
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// MaxBodySize.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	handler.NewServer(trips, heartbeat, corridor).Routes(r)

	// --- Heartbeat loop ---------------------------------------------------
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go heartbeatLoop(loopCtx, store, heartbeat, cfg.Monitor.HeartbeatInterval, logger)

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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
	stopLoop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrateUp applies pending schema migrations. goose needs database/sql, so
// it gets its own short-lived connection instead of the pgx pool.
func migrateUp(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path)
	}
	return nil
}

// heartbeatLoop runs one monitoring cycle per active trip every interval,
// using each trip's last known position. A trip without a position yet has
// nothing to evaluate. Failures are logged and never stop the loop.
func heartbeatLoop(ctx context.Context, store repo.TripStateRepo, hb *service.Heartbeat, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ids, err := store.ListIDs(ctx)
		if err != nil {
			log.Error("heartbeat list trips failed", "error", err)
			continue
		}

		for _, id := range ids {
			cycleCtx, cancel := context.WithTimeout(ctx, interval)

			state, err := store.Get(cycleCtx, id)
			if err != nil {
				log.Error("heartbeat load failed", "trip", id, "error", err)
				cancel()
				continue
			}
			if state.LastPosition == nil {
				cancel()
				continue
			}

			result, err := hb.Run(cycleCtx, id, state.LastPosition.Position, time.Now().UTC())
			cancel()
			if err != nil {
				log.Error("heartbeat cycle failed", "trip", id, "error", err)
				continue
			}
			if result.Mode == domain.ModeAlert {
				log.Info("heartbeat alert", "trip", id, "message", result.Message)
			}
		}
	}
}
