// Package metrics exposes Prometheus counters for queries sent to the reporting API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	ReportQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficlens_report_queries_total",
		Help: "Report queries sent to the reporting API by shape and outcome.",
	}, []string{"shape", "outcome"})
	ReportQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trafficlens_report_query_duration_seconds",
		Help:    "Latency of report queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"shape"})
	ReportRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficlens_report_rows_total",
		Help: "Rows returned by the reporting API.",
	}, []string{"shape"})
)

func init() {
	prometheus.MustRegister(ReportQueries, ReportQueryDuration, ReportRows)
}

// ObserveQuery records one finished query.
func ObserveQuery(shape string, started time.Time, rows int, err error) {
	ReportQueryDuration.WithLabelValues(shape).Observe(time.Since(started).Seconds())

	switch {
	case err != nil:
		ReportQueries.WithLabelValues(shape, OutcomeError).Inc()
	case rows == 0:
		ReportQueries.WithLabelValues(shape, OutcomeEmpty).Inc()
	default:
		ReportQueries.WithLabelValues(shape, OutcomeOK).Inc()
	}
	ReportRows.WithLabelValues(shape).Add(float64(rows))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
