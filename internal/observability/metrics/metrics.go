// Package metrics registers Prometheus instrumentation for the cost
// store, the report engine and the rate provider.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "costbook_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	costsRecorded *prometheus.CounterVec

	reportsTotal  *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	rateFetchTotal *prometheus.CounterVec
)

// Init registers all metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		costsRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "costs_recorded_total",
				Help: "Total cost records inserted by currency",
			},
			[]string{"currency"},
		)

		reportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reports_total",
				Help: "Total report generations by result",
			},
			[]string{"result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		rateFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rate_fetch_total",
				Help: "Total exchange rate fetches by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			costsRecorded,
			reportsTotal,
			reportLatency,
			rateFetchTotal,
		)
	})
}

// IncCostRecorded counts a persisted cost record.
func IncCostRecorded(currency string) {
	if currency == "" {
		currency = "unknown"
	}
	if costsRecorded != nil {
		costsRecorded.WithLabelValues(currency).Inc()
	}
}

// ObserveReport records report generation duration and result.
func ObserveReport(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportsTotal != nil {
		reportsTotal.WithLabelValues(result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncRateFetch counts a rate fetch attempt. A fetch that degraded to
// the empty rate table counts as an error even though the report
// itself still succeeds.
func IncRateFetch(result string) {
	if result == "" {
		result = resultSuccess
	}
	if rateFetchTotal != nil {
		rateFetchTotal.WithLabelValues(result).Inc()
	}
}

// Exported result labels for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
