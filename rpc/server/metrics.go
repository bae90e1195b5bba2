package server

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// serverMetrics holds the metrics exposed on the metrics endpoint of the server
type serverMetrics struct {
	set *metrics.Set

	checks      *metrics.Counter
	checkErrors *metrics.Counter
	cacheHits   *metrics.Counter
	plansOK     *metrics.Counter
	plansRB     *metrics.Counter
	duration    *metrics.Summary
}

func newServerMetrics() *serverMetrics {
	set := metrics.NewSet()
	return &serverMetrics{
		set:         set,
		checks:      set.NewCounter("tsched_checks_total"),
		checkErrors: set.NewCounter("tsched_check_errors_total"),
		cacheHits:   set.NewCounter("tsched_cache_hits_total"),
		plansOK:     set.NewCounter(`tsched_plans_total{verdict="ok"}`),
		plansRB:     set.NewCounter(`tsched_plans_total{verdict="rollback"}`),
		duration:    set.NewSummary("tsched_check_duration_seconds"),
	}
}

// write writes all metrics in Prometheus text format
func (m *serverMetrics) write(w io.Writer) {
	m.set.WritePrometheus(w)
}
