// Package metrics exposes prometheus collectors for config syncs, access checks and
// dashboard websocket connections. Served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "website_sync_runs_total",
			Help: "Public website config syncs by section and outcome",
		},
		[]string{"section", "outcome"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "website_sync_duration_seconds",
			Help:    "Duration of public website config syncs",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"section"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "website_sync_last_success_timestamp",
			Help: "Unix time of the last successful sync per section",
		},
		[]string{"section"},
	)

	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_access_decisions_total",
			Help: "Access gate decisions by result (granted or deny reason)",
		},
		[]string{"result"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_websocket_connections_active",
			Help: "Connected dashboard websocket clients",
		},
	)
)

// RecordSync records one sync run of a section.
func RecordSync(section string, started time.Time, err error) {
	SyncDuration.WithLabelValues(section).Observe(time.Since(started).Seconds())
	if err != nil {
		SyncRuns.WithLabelValues(section, "error").Inc()
		return
	}
	SyncRuns.WithLabelValues(section, "success").Inc()
	SyncLastSuccess.WithLabelValues(section).SetToCurrentTime()
}

// RecordAccess records an access gate decision.
func RecordAccess(result string) {
	AccessDecisions.WithLabelValues(result).Inc()
}
