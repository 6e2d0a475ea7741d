package idalloc

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

var (
	allocatedFresh  = metrics.GetOrCreateCounter(`storefront_ids_allocated_total{reused="false"}`)
	allocatedReused = metrics.GetOrCreateCounter(`storefront_ids_allocated_total{reused="true"}`)
	freedTotal      = metrics.GetOrCreateCounter(`storefront_ids_freed_total`)
	resetsTotal     = metrics.GetOrCreateCounter(`storefront_ids_resets_total`)
	rebuildsTotal   = metrics.GetOrCreateCounter(`storefront_ids_rebuilds_total`)
	persistErrors   = metrics.GetOrCreateCounter(`storefront_ids_persist_errors_total`)
)

// WriteMetrics writes the allocator counters in Prometheus text format.
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
