package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups   *prometheus.CounterVec
	cacheWrites    *prometheus.CounterVec
	vendorRequests *prometheus.CounterVec
	outcomes       *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_snapshot_cache_lookups_total",
				Help: "Snapshot cache lookups by result (hit, miss, expired, error)",
			},
			[]string{"result"},
		),
		cacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_snapshot_cache_writes_total",
				Help: "Snapshot cache upserts by result",
			},
			[]string{"result"},
		),
		vendorRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_vendor_requests_total",
				Help: "Outbound vendor requests by vendor, endpoint and result",
			},
			[]string{"vendor", "endpoint", "result"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_aggregation_outcomes_total",
				Help: "Per-location aggregation outcomes",
			},
			[]string{"status"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_errors_total",
				Help: "Total number of absorbed errors",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "findash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheLookup records a snapshot cache read.
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite records a snapshot cache upsert.
func (r *Recorder) RecordCacheWrite(result string) {
	r.cacheWrites.WithLabelValues(result).Inc()
}

// RecordVendorRequest records one outbound vendor call.
func (r *Recorder) RecordVendorRequest(vendor, endpoint, result string) {
	r.vendorRequests.WithLabelValues(vendor, endpoint, result).Inc()
}

// RecordOutcome records a per-location aggregation status.
func (r *Recorder) RecordOutcome(status string) {
	r.outcomes.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordCacheLookup(string)                   {}
func (Noop) RecordCacheWrite(string)                    {}
func (Noop) RecordVendorRequest(string, string, string) {}
func (Noop) RecordOutcome(string)                       {}
func (Noop) RecordError(string)                         {}
func (Noop) RecordLatency(string, float64)              {}
