package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/api"
	"codeberg.org/mutker/poolwatch/internal/collector"
	"codeberg.org/mutker/poolwatch/internal/config"
	"codeberg.org/mutker/poolwatch/internal/logger"
	"codeberg.org/mutker/poolwatch/internal/panels"
	"codeberg.org/mutker/poolwatch/internal/publish"
	"codeberg.org/mutker/poolwatch/internal/session"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
	"codeberg.org/mutker/poolwatch/internal/tracker"
	"codeberg.org/mutker/poolwatch/internal/weather"
)

const (
	sessionKey          = "default"
	pumpSignal          = "Filter pump"
	httpShutdownTimeout = 5 * time.Second
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	debug := cfg.Debug || cfg.LogLevel == "debug"
	verbose := cfg.Verbose || cfg.LogLevel == "info"
	logger.Init(debug, verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := cfg.ValidateRemote(); err != nil {
		logger.Fatal().Err(err).Msg("Incomplete controller configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	store, err := telemetry.NewStore(telemetry.Config{
		DBPath:   cfg.Database,
		Capacity: cfg.BufferCapacity,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open telemetry store")
	}
	defer store.Close()

	annotations, err := annotation.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open annotation store")
	}

	var publisher publish.Publisher
	var pumpSink annotation.Writer = annotations
	if cfg.MQTTEnabled {
		publisher, err = publish.NewPaho(publish.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect MQTT publisher")
		}
		defer publisher.Close()
		pumpSink = publish.AnnotationSink(annotations, publisher)
	}

	pump := tracker.New(pumpSignal, pumpSink)

	weatherSource := weather.NewService(weather.NewOpenMeteo(cfg.Latitude, cfg.Longitude))

	registry, err := session.NewRegistry(session.Config{
		BaseURL:        cfg.ControllerURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		MaxAge:         time.Duration(cfg.SessionMaxAge) * time.Hour,
		SweepInterval:  time.Duration(cfg.SweepInterval) * time.Minute,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create session registry")
	}
	registry.StartSweep(ctx)

	poller, err := collector.New(
		collector.Config{CacheTTL: time.Duration(cfg.CacheTTL) * time.Second},
		panels.Defaults(),
		weatherSource,
		store,
		pump,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create collector")
	}
	if publisher != nil {
		poller.SetPublisher(publisher)
	}

	handler := api.NewHandler(poller, store, annotations, registry,
		api.Credentials{Username: cfg.Username, Password: cfg.Password}, sessionKey)
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("listen", cfg.Listen).Msg("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	if err := loop(ctx, poller, registry); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}

	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context, poller *collector.Collector, registry *session.Registry) error {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect once at startup so the API has data immediately.
	collectOnce(ctx, poller, registry)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			collectOnce(ctx, poller, registry)
		}
	}
}

func collectOnce(ctx context.Context, poller *collector.Collector, registry *session.Registry) {
	sess, err := registry.Get(sessionKey)
	if err != nil {
		logger.Error().Err(err).Msg("Session unavailable")
		return
	}

	if !sess.IsAuthenticated() {
		result, err := sess.Authenticate(ctx, cfg.Username, cfg.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Authentication transport failure")
			return
		}
		if !result.Success {
			logger.Error().Str("reason", result.Message).Msg("Controller rejected credentials")
			return
		}
	}

	snapshot, err := poller.Collect(ctx, sess, sessionKey)
	if err != nil {
		logger.Error().Err(err).Msg("Poll cycle failed")
		return
	}

	logSnapshot(snapshot)
}

func logSnapshot(snapshot telemetry.Snapshot) {
	event := logger.Info().
		Time("timestamp", snapshot.Timestamp).
		Int("failed_subsystems", len(snapshot.Errors))

	if snapshot.WaterTemperature != nil {
		event = event.Float64("water_temperature", *snapshot.WaterTemperature)
	}
	if snapshot.SaltPPM != nil {
		event = event.Float64("salt_ppm", *snapshot.SaltPPM)
	}
	if snapshot.PumpRunning != nil {
		event = event.Bool("pump_running", *snapshot.PumpRunning)
	}

	event.Msg("Collected snapshot")
}

func handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Received termination signal")
	cancel()
}
