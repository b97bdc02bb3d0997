package purge

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts purge runs and removed products.
type Metrics struct {
	runs    *prometheus.CounterVec
	removed prometheus.Counter
}

// NewMetrics registers the purge collectors with reg. Collectors that are
// already registered are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamhub",
			Subsystem: "purge",
			Name:      "runs_total",
			Help:      "Purge runs by outcome (ok, error, skipped).",
		}, []string{"outcome"}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamhub",
			Subsystem: "purge",
			Name:      "products_removed_total",
			Help:      "Soft-deleted products permanently removed.",
		}),
	}

	if err := reg.Register(m.runs); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				m.runs = existing
			}
		}
	}
	if err := reg.Register(m.removed); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				m.removed = existing
			}
		}
	}
	return m
}

func (m *Metrics) observe(outcome string, removed int64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if removed > 0 {
		m.removed.Add(float64(removed))
	}
}
