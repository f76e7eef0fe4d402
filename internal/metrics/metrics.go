package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "canvas_replay"

// #region metrics
// Metrics holds the replay collectors. It satisfies the orchestrator's
// Observer interface.
type Metrics struct {
	actions *prometheus.CounterVec
	records *prometheus.CounterVec
	toasts  prometheus.Counter
	depth   *prometheus.GaugeVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in binaries and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: direction (undo, redo, commit), outcome (applied, noop, rejected)
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Replay actions by direction and outcome",
		}, []string{"direction", "outcome"}),
		// Labels: category (toast, focus, update, skipped)
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_records_total",
			Help:      "Classified change records by rule",
		}, []string{"category"}),
		toasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_total",
			Help:      "Toast notifications emitted by undo and redo",
		}),
		// Labels: stack (undo, redo)
		depth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Entries on the undo and redo stacks after the last action",
		}, []string{"stack"}),
	}
}
// #endregion metrics

// #region observer
// ObserveAction counts one undo, redo or commit.
func (m *Metrics) ObserveAction(direction, outcome string) {
	m.actions.WithLabelValues(direction, outcome).Inc()
}

// ObserveRecord counts one classified change record.
func (m *Metrics) ObserveRecord(category string) {
	m.records.WithLabelValues(category).Inc()
}

// ObserveToasts adds n emitted toasts.
func (m *Metrics) ObserveToasts(n int) {
	if n > 0 {
		m.toasts.Add(float64(n))
	}
}

// SetHistoryDepth records the stack sizes.
func (m *Metrics) SetHistoryDepth(undo, redo int) {
	m.depth.WithLabelValues("undo").Set(float64(undo))
	m.depth.WithLabelValues("redo").Set(float64(redo))
}
// #endregion observer
