// Package metrics exposes build activity as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the build metrics.
type Collector struct {
	DocumentsTotal     *prometheus.CounterVec
	DocumentDuration   *prometheus.HistogramVec
	CollectionErrors   *prometheus.GaugeVec
	CollectionDuration *prometheus.HistogramVec
	BuildsTotal        *prometheus.CounterVec
	LastBuild          prometheus.Gauge
}

// New creates a collector whose metrics are registered with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		DocumentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Name:      "documents_total",
				Help:      "Documents validated, by collection and outcome",
			},
			[]string{"collection", "status"},
		),
		DocumentDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lattice",
				Name:      "document_validation_seconds",
				Help:      "Time spent validating one document",
				Buckets:   []float64{.00001, .0001, .001, .01, .1},
			},
			[]string{"collection"},
		),
		CollectionErrors: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lattice",
				Name:      "collection_errors",
				Help:      "Errors reported by the last build of each collection",
			},
			[]string{"collection"},
		),
		CollectionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lattice",
				Name:      "collection_build_seconds",
				Help:      "Time spent loading and validating a collection",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		BuildsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Name:      "builds_total",
				Help:      "Completed builds, by outcome",
			},
			[]string{"status"},
		),
		LastBuild: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lattice",
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time of the last completed build",
			},
		),
	}
}

// Hooks returns lifecycle hooks that record document and collection events.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDocument: func(_ context.Context, e *domain.DocumentEvent) {
			status := "valid"
			if !e.Valid {
				status = "invalid"
			}
			c.DocumentsTotal.WithLabelValues(e.Collection, status).Inc()
			c.DocumentDuration.WithLabelValues(e.Collection).Observe(e.Duration.Seconds())
		},
		OnCollection: func(_ context.Context, e *domain.CollectionEvent) {
			c.CollectionErrors.WithLabelValues(e.Collection).Set(float64(e.Errors))
			c.CollectionDuration.WithLabelValues(e.Collection).Observe(e.Duration.Seconds())
		},
	}
}

// RecordBuild counts a finished build. err is the store's aggregate error.
func (c *Collector) RecordBuild(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.BuildsTotal.WithLabelValues(status).Inc()
	c.LastBuild.Set(float64(time.Now().Unix()))
}
