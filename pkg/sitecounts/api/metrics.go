package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the render metrics
type Metrics struct {
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
}

// NewMetrics creates the render metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecounts_renders_total",
			Help: "Total block renders by outcome (ok, error)",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitecounts_render_duration_seconds",
			Help:    "Time to render the block, queries included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Renders, m.RenderDuration)
	}
	return m
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Renders.WithLabelValues(outcome).Inc()
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
