package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts lifecycle operations by outcome. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_lifecycle_operations_total",
			Help: "Event lifecycle operations by operation and result.",
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if code := CodeOf(err); code != "" {
		return code
	}
	return "error"
}
