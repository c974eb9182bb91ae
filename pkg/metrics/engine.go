package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "atacado"

// Result labels shared by the engine counters.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// EngineMetrics covers order calculation, status transitions and the cashback ledger.
type EngineMetrics struct {
	calculations   *prometheus.CounterVec
	placements     *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	ledgerPosts    *prometheus.CounterVec
	ledgerAmount   *prometheus.CounterVec
	walletsDrifted prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	m := &EngineMetrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "calculations_total",
			Help:      "Order calculations by outcome.",
		}, []string{"result"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placements_total",
			Help:      "Order placements by outcome.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Order status transitions by source, target and outcome.",
		}, []string{"from", "to", "result"}),
		ledgerPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cashback",
			Name:      "ledger_posts_total",
			Help:      "Cashback ledger entries by type and outcome.",
		}, []string{"type", "result"}),
		ledgerAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cashback",
			Name:      "ledger_amount_total",
			Help:      "Sum of posted cashback amounts by type.",
		}, []string{"type"}),
		walletsDrifted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cashback",
			Name:      "wallets_drifted_total",
			Help:      "Wallets whose cached balance disagreed with the ledger during reconciliation.",
		}),
	}
	reg.MustRegister(m.calculations, m.placements, m.transitions, m.ledgerPosts, m.ledgerAmount, m.walletsDrifted)
	return m
}

func (m *EngineMetrics) IncCalculation(result string) {
	if m == nil || m.calculations == nil {
		return
	}
	m.calculations.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *EngineMetrics) IncPlacement(result string) {
	if m == nil || m.placements == nil {
		return
	}
	m.placements.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *EngineMetrics) IncTransition(from, to, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), normalizeLabel(result)).Inc()
}

// ObserveLedgerPost counts one ledger post; amount is added only for successful posts.
func (m *EngineMetrics) ObserveLedgerPost(entryType, result string, amount decimal.Decimal) {
	if m == nil || m.ledgerPosts == nil {
		return
	}
	m.ledgerPosts.WithLabelValues(normalizeLabel(entryType), normalizeLabel(result)).Inc()
	if result == ResultOK {
		m.ledgerAmount.WithLabelValues(normalizeLabel(entryType)).Add(amount.InexactFloat64())
	}
}

func (m *EngineMetrics) IncWalletDrift() {
	if m == nil || m.walletsDrifted == nil {
		return
	}
	m.walletsDrifted.Inc()
}
