// Package metrics exposes counters for the sampling loop. Registration
// is optional; when no metrics endpoint is configured the collectors
// still count but are never scraped.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors updated by the sampling loop.
type Metrics struct {
	SamplesTotal     prometheus.Counter
	BroadcastsTotal  prometheus.Counter
	BroadcastErrors  prometheus.Counter
	AppendsTotal     prometheus.Counter
	AppendErrors     prometheus.Counter
	RotationsTotal   prometheus.Counter
	WorkingFileBytes prometheus.Gauge
	InboundDropped   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := Metrics{
		SamplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_samples_total",
			Help: "Sensor frames sampled.",
		}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_broadcasts_total",
			Help: "Telemetry packets handed to the TNC.",
		}),
		BroadcastErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_broadcast_errors_total",
			Help: "Telemetry packets the TNC refused or could not send.",
		}),
		AppendsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_wod_appends_total",
			Help: "Frames appended to the working WOD file.",
		}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_wod_append_errors_total",
			Help: "Failed WOD appends, cumulative for the run.",
		}),
		RotationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pacsat_wod_rotations_total",
			Help: "WOD files rotated into the queue directory.",
		}),
		WorkingFileBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pacsat_wod_file_bytes",
			Help: "Size of the working WOD file on disk.",
		}),
		InboundDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pacsat_tnc_inbound_dropped",
			Help: "Inbound TNC frames evicted from the receive buffer.",
		}),
	}

	reg.MustRegister(
		m.SamplesTotal,
		m.BroadcastsTotal,
		m.BroadcastErrors,
		m.AppendsTotal,
		m.AppendErrors,
		m.RotationsTotal,
		m.WorkingFileBytes,
		m.InboundDropped,
	)

	return &m
}

// Handler returns an HTTP handler serving the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
