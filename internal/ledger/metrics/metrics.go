package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the points ledger.
type Metrics struct {
	PointsCredited      prometheus.Counter
	PointsDebited       prometheus.Counter
	InsufficientBalance prometheus.Counter
}

// New creates and registers all ledger metrics.
func New() *Metrics {
	return &Metrics{
		PointsCredited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recircle_ledger_points_credited_total",
			Help: "Total points credited across all users",
		}),
		PointsDebited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recircle_ledger_points_debited_total",
			Help: "Total points debited across all users",
		}),
		InsufficientBalance: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recircle_ledger_insufficient_balance_total",
			Help: "Total debits rejected for insufficient balance",
		}),
	}
}

// RecordCredit counts credited points.
func (m *Metrics) RecordCredit(amount int) {
	if m != nil {
		m.PointsCredited.Add(float64(amount))
	}
}

// RecordDebit counts debited points.
func (m *Metrics) RecordDebit(amount int) {
	if m != nil {
		m.PointsDebited.Add(float64(amount))
	}
}

// RecordInsufficientBalance counts a rejected debit.
func (m *Metrics) RecordInsufficientBalance() {
	if m != nil {
		m.InsufficientBalance.Inc()
	}
}
