package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alanbjohnston/pacsat-telem/internal/agw"
	"github.com/alanbjohnston/pacsat-telem/internal/broadcast"
	"github.com/alanbjohnston/pacsat-telem/internal/catalog"
	"github.com/alanbjohnston/pacsat-telem/internal/metrics"
	"github.com/alanbjohnston/pacsat-telem/internal/telem"
	"github.com/alanbjohnston/pacsat-telem/internal/wod"
)

// Run wires the telemetry capture together and drives the sampling loop
// until shutdown.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	stat, err := os.Stat(config.DataDir)
	if err != nil {
		return fmt.Errorf("data directory '%s': %w", config.DataDir, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("invalid data directory '%s'", config.DataDir)
	}

	store := catalog.New(config.CatalogPath())
	defer store.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if config.MetricsAddr != "" {
		serveMetrics(ctx, config.MetricsAddr, reg, logger)
	}

	wodLog := wod.NewLog(config.WodPath(), config.QueueDir(), config.MaxWodSizeKB, wod.WithLogger(logger))
	governor := wod.NewGovernor(config.MaxFileErrors)

	// The TNC is optional at startup: broadcast degrades to a no-op
	// error path while WOD logging carries on.
	var sender agw.Sender
	client, err := agw.Dial(config.TNCAddr, agw.WithLogger(logger))
	if err != nil {
		logger.Warn(fmt.Sprintf("TNC unavailable, telemetry broadcast disabled: %s", err))
	} else {
		defer client.Close()
		go client.Listen(ctx)
		go watchInbound(ctx, client, m)

		if err := client.Register(broadcast.BroadcastCallsign); err != nil {
			logger.Error(err.Error())
		}
		sender = client
	}

	caster := broadcast.New(sender, broadcast.WithLogger(logger))
	if sender != nil {
		if err := caster.SendTimeBeacon(); err != nil {
			logger.Error(err.Error())
		}
	}

	loopConfig := LoopConfig{
		SamplePeriod: config.SamplePeriod.Duration(),
		StorePeriod:  config.StorePeriod.Duration(),
		BeaconPeriod: config.BeaconPeriod.Duration(),
	}

	logger.Info("starting telemetry capture",
		slog.String("wod", config.WodPath()),
		slog.Duration("samplePeriod", loopConfig.SamplePeriod),
		slog.Duration("storePeriod", loopConfig.StorePeriod))

	loop := NewLoop(loopConfig, telem.NewSimReader(), wodLog, governor,
		WithBroadcaster(caster),
		WithCatalog(store),
		WithMetrics(m),
		WithLogger(logger))

	return loop.Run(ctx)
}

// watchInbound samples the receive buffer stats. The core never reads
// the buffered frames; this only keeps the eviction count visible.
func watchInbound(ctx context.Context, client *agw.Client, m *metrics.Metrics) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.InboundDropped.Set(float64(client.Inbound().Dropped()))
		}
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg)}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("metrics endpoint listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("metrics endpoint: %s", err))
		}
	}()
}
