package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records stock-ledger and workflow activity.
type FulfillmentMetrics struct {
	movements   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Recorded stock movements by type.",
	}, []string{"type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_transitions_total",
		Help: "Workflow status transitions by entity and target status.",
	}, []string{"entity", "status"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "version_conflicts_total",
		Help: "Optimistic concurrency conflicts by entity.",
	}, []string{"entity"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fulfillment_operation_duration_seconds",
		Help:    "Duration of fulfillment operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(movements, transitions, conflicts, duration)
	return &FulfillmentMetrics{
		movements:   movements,
		transitions: transitions,
		conflicts:   conflicts,
		duration:    duration,
	}
}

// IncMovement increments the movement counter for the given movement type.
func (f *FulfillmentMetrics) IncMovement(movementType string) {
	if f == nil || f.movements == nil {
		return
	}
	f.movements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncTransition increments the transition counter for the entity and target status.
func (f *FulfillmentMetrics) IncTransition(entity, status string) {
	if f == nil || f.transitions == nil {
		return
	}
	f.transitions.WithLabelValues(normalizeLabel(entity), normalizeLabel(status)).Inc()
}

// IncConflict increments the version conflict counter for the entity.
func (f *FulfillmentMetrics) IncConflict(entity string) {
	if f == nil || f.conflicts == nil {
		return
	}
	f.conflicts.WithLabelValues(normalizeLabel(entity)).Inc()
}

// ObserveDuration records how long the named operation took.
func (f *FulfillmentMetrics) ObserveDuration(operation string, duration time.Duration) {
	if f == nil || f.duration == nil {
		return
	}
	f.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
