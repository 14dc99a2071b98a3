package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// appMetrics counts user-visible outcomes.
type appMetrics struct {
	transactions *prometheus.CounterVec
	reports      *prometheus.CounterVec
	exports      *prometheus.CounterVec
	stale        *prometheus.CounterVec
	journal      *prometheus.CounterVec
}

func newAppMetrics(reg prometheus.Registerer) *appMetrics {
	factory := promauto.With(reg)
	return &appMetrics{
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Name:      "transactions_total",
			Help:      "Create and delete requests by outcome.",
		}, []string{"action", "outcome"}),
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Name:      "reports_total",
			Help:      "Report generations by resulting state.",
		}, []string{"state"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Name:      "report_exports_total",
			Help:      "Report exports by format and outcome.",
		}, []string{"format", "outcome"}),
		stale: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}, []string{"fragment"}),
		journal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Name:      "journal_writes_total",
			Help:      "Activity journal writes by outcome.",
		}, []string{"outcome"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
