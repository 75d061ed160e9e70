package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg              *prometheus.Registry
	RowsInserted     *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	Runs             *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagen_rows_inserted_total",
		Help: "Rows committed by generation runs.",
	}, []string{"table"})
	stage := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datagen_stage_duration_seconds",
		Help:    "Wall time of each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"stage"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagen_runs_total",
		Help: "Generation runs by outcome.",
	}, []string{"status"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datagen_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})

	r.MustRegister(rows, stage, runs, lastRun)
	return &Registry{
		reg:              r,
		RowsInserted:     rows,
		StageDuration:    stage,
		Runs:             runs,
		LastRunTimestamp: lastRun,
	}
}

// ObserveRun records one finished run. rows only counts committed rows, so a
// failed run passes none.
func (r *Registry) ObserveRun(status string, rows map[string]int64, stages map[string]time.Duration) {
	r.Runs.WithLabelValues(status).Inc()
	for table, n := range rows {
		r.RowsInserted.WithLabelValues(table).Add(float64(n))
	}
	for stage, d := range stages {
		r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
	r.LastRunTimestamp.SetToCurrentTime()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
