// Package metrics defines the Prometheus collectors for the capture
// pipeline. The collectors are registered on the default registry and
// exposed by the API server under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsReadTotal counts raw packets pulled from the capture source.
	PacketsReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netdash_capture_packets_read_total",
		Help: "Total number of raw packets read from the capture source",
	})

	// RecordsBuiltTotal counts records that made it through the builder.
	RecordsBuiltTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netdash_records_built_total",
		Help: "Total number of packet records built",
	})

	// PacketsSkippedTotal counts packets dropped by the builder, by reason.
	PacketsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netdash_packets_skipped_total",
		Help: "Total number of packets skipped by the record builder",
	}, []string{"reason"})

	// GeoLookupsTotal counts enrichment lookups by result.
	GeoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netdash_geo_lookups_total",
		Help: "Total number of geolocation lookups",
	}, []string{"result"})

	// AlertsFiredTotal counts fired alerts per rule.
	AlertsFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netdash_alerts_fired_total",
		Help: "Total number of alerts fired",
	}, []string{"rule"})

	// EvictionsTotal counts records evicted from the retention window.
	EvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netdash_store_evictions_total",
		Help: "Total number of records evicted from the ring buffer",
	})

	// SourceErrorsTotal counts transient capture source read errors.
	SourceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netdash_capture_source_errors_total",
		Help: "Total number of capture source read errors",
	})

	// RetainedRecords tracks the current size of the retention window.
	RetainedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netdash_store_retained_records",
		Help: "Number of records currently retained in the ring buffer",
	})
)

// Lookup result labels for GeoLookupsTotal.
const (
	LookupHit      = "hit"
	LookupNotFound = "not_found"
	LookupError    = "error"
)
