package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RecordsCreated    *prometheus.CounterVec
	RecordsUpdated    *prometheus.CounterVec
	RecordsDeleted    *prometheus.CounterVec
	ConflictsRejected *prometheus.CounterVec
	InvalidIntervals  *prometheus.CounterVec
	LookupsServed     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics. The record_type label is
// "clearance" or "exclusion".
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_records_created_total",
			Help: "Total authorization records created, by record type",
		}, []string{"record_type"}),
		RecordsUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_records_updated_total",
			Help: "Total authorization records updated, by record type",
		}, []string{"record_type"}),
		RecordsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_records_deleted_total",
			Help: "Total authorization records deleted, by record type",
		}, []string{"record_type"}),
		ConflictsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_validity_conflicts_total",
			Help: "Writes rejected because the validity window overlapped a sibling record",
		}, []string{"record_type"}),
		InvalidIntervals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_invalid_intervals_total",
			Help: "Writes rejected because the validity window ended before it started",
		}, []string{"record_type"}),
		LookupsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_reference_lookups_total",
			Help: "Reference designation lookups served, by designation kind",
		}, []string{"kind"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procura_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
