// Package metrics exposes Prometheus counters for ledger, registration and bill events.
// All methods are safe on a nil *Metrics so services can run without instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "costshare"

// Metrics groups the application counters.
type Metrics struct {
	ledgerTransactions *prometheus.CounterVec
	ledgerAmount       *prometheus.CounterVec
	ledgerRejections   *prometheus.CounterVec
	registrationEvents *prometheus.CounterVec
	recalculations     prometheus.Counter
	billTransitions    *prometheus.CounterVec
	dispatchResults    *prometheus.CounterVec
	dispatchDuration   prometheus.Histogram
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Committed ledger entries by type.",
		}, []string{"type"}),
		ledgerAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Sum of committed ledger entry amounts by type.",
		}, []string{"type"}),
		ledgerRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Ledger entries rejected before commit, by reason.",
		}, []string{"reason"}),
		registrationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "events_total",
			Help:      "Registration state changes and payments.",
		}, []string{"event"}),
		recalculations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cost_sharing",
			Name:      "recalculations_total",
			Help:      "Cost-sharing recalculations committed.",
		}),
		billTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bill",
			Name:      "transitions_total",
			Help:      "Bill lifecycle transitions by target status.",
		}, []string{"status"}),
		dispatchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bill",
			Name:      "dispatch_total",
			Help:      "Bill notice delivery attempts by outcome.",
		}, []string{"status"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bill",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent delivering one bill notice.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ledgerTransactions,
			m.ledgerAmount,
			m.ledgerRejections,
			m.registrationEvents,
			m.recalculations,
			m.billTransitions,
			m.dispatchResults,
			m.dispatchDuration,
		)
	}
	return m
}

// LedgerTransaction counts a committed entry.
func (m *Metrics) LedgerTransaction(txType string, amount float64) {
	if m == nil {
		return
	}
	m.ledgerTransactions.WithLabelValues(txType).Inc()
	m.ledgerAmount.WithLabelValues(txType).Add(amount)
}

// LedgerRejected counts an entry that failed validation or the balance check.
func (m *Metrics) LedgerRejected(reason string) {
	if m == nil {
		return
	}
	m.ledgerRejections.WithLabelValues(reason).Inc()
}

// RegistrationEvent counts a registration lifecycle event such as "registered" or "paid".
func (m *Metrics) RegistrationEvent(event string) {
	if m == nil {
		return
	}
	m.registrationEvents.WithLabelValues(event).Inc()
}

// Recalculated counts a committed cost-sharing recalculation.
func (m *Metrics) Recalculated() {
	if m == nil {
		return
	}
	m.recalculations.Inc()
}

// BillTransition counts a bill entering status.
func (m *Metrics) BillTransition(status string) {
	if m == nil {
		return
	}
	m.billTransitions.WithLabelValues(status).Inc()
}

// DispatchResult records the outcome and duration of one delivery attempt.
func (m *Metrics) DispatchResult(status string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchResults.WithLabelValues(status).Inc()
	m.dispatchDuration.Observe(seconds)
}
