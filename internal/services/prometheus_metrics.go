package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorderInterface records operational metrics of the ingest and
// analysis paths.
type MetricsRecorderInterface interface {
	RecordAnalysis(analysis, status string, duration time.Duration)
	RecordPopulationSize(analysis string, nCustomers int)
	RecordIngestedTransactions(count int)
	RecordIngestRejected(reason string, count int)
	SetStoredTransactions(count int64)
}

type PrometheusMetrics struct {
	analysisRuns       *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	populationSize     *prometheus.HistogramVec
	ingestedTotal      prometheus.Counter
	ingestRejected     *prometheus.CounterVec
	storedTransactions prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		analysisRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_runs_total",
				Help: "Total number of analysis runs by type and outcome",
			},
			[]string{"analysis", "status"},
		),
		analysisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_duration_milliseconds",
				Help:    "Analysis run duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
			[]string{"analysis"},
		),
		populationSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_population_size",
				Help:    "Number of customers entering an analysis run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"analysis"},
		),
		ingestedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "transactions_ingested_total",
				Help: "Total number of transactions accepted by the import endpoint",
			},
		),
		ingestRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_rejected_total",
				Help: "Total number of import rows rejected by reason",
			},
			[]string{"reason"},
		),
		storedTransactions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "transactions_stored",
				Help: "Current number of transactions in storage",
			},
		),
	}
}

func (m *PrometheusMetrics) RecordAnalysis(analysis, status string, duration time.Duration) {
	m.analysisRuns.WithLabelValues(analysis, status).Inc()
	m.analysisDuration.WithLabelValues(analysis).Observe(float64(duration.Milliseconds()))
}

func (m *PrometheusMetrics) RecordPopulationSize(analysis string, nCustomers int) {
	m.populationSize.WithLabelValues(analysis).Observe(float64(nCustomers))
}

func (m *PrometheusMetrics) RecordIngestedTransactions(count int) {
	m.ingestedTotal.Add(float64(count))
}

func (m *PrometheusMetrics) RecordIngestRejected(reason string, count int) {
	m.ingestRejected.WithLabelValues(reason).Add(float64(count))
}

func (m *PrometheusMetrics) SetStoredTransactions(count int64) {
	m.storedTransactions.Set(float64(count))
}
