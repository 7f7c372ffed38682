/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the municipal water back office server. Handles
  configuration, dependency injection, background workers and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load YAML config
  2. Open the emergency-contact directory (SQLite)
  3. Build ledgers, stores and the API handler
  4. Load demo data if enabled
  5. Start the telemetry simulator and the supply-status refresher
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional, defaults apply without it)
  -addr    Listen address, overrides the config value
  -seed    Force demo-data loading regardless of the config

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop background workers, close the directory database
  4. Exit

ENVIRONMENT:
  WATER_OFFICE_JWT_SECRET overrides the configured JWT secret.

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civista/water-office/api"
	"github.com/civista/water-office/auth"
	"github.com/civista/water-office/billing"
	"github.com/civista/water-office/citizens"
	"github.com/civista/water-office/config"
	"github.com/civista/water-office/directory"
	"github.com/civista/water-office/rewards"
	"github.com/civista/water-office/telemetry"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	seed := flag.Bool("seed", false, "load demo data regardless of config")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *seed {
		cfg.SeedDemoData = true
	}

	// Stores
	dir, err := directory.Open(cfg.DirectoryDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open contact directory")
	}
	defer dir.Close()

	billingLedger := billing.NewLedger()
	rewardsLedger := rewards.NewLedger()
	citizenStore := citizens.NewStore()
	telemetryStore := telemetry.NewStore()
	hub := telemetry.NewHub()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL.Std())

	handler := api.NewHandler(billingLedger, rewardsLedger, citizenStore, dir, telemetryStore, hub, tokens)

	if cfg.SeedDemoData {
		if err := handler.SeedDemoData(); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// Background workers
	simulator := telemetry.NewSimulator(telemetryStore, hub)
	simulator.Interval = cfg.TelemetryInterval.Std()
	simulator.Start()
	defer simulator.Stop()

	refresher := api.NewStatusRefresher(billingLedger)
	refresher.Interval = cfg.StatusRefreshInterval.Std()
	refresher.Start()
	defer refresher.Stop()

	// HTTP server
	router := api.NewRouter(handler, cfg.AllowedOrigins)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
