package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanifleet",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization gate decisions by outcome and reason.",
	}, []string{"outcome", "reason"})

	ImportBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanifleet",
		Subsystem: "imports",
		Name:      "batches_total",
		Help:      "Import batches by entity type and outcome.",
	}, []string{"entity_type", "outcome"})

	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanifleet",
		Subsystem: "imports",
		Name:      "rows_total",
		Help:      "Import rows by entity type and disposition.",
	}, []string{"entity_type", "disposition"})
)

func RecordAuthzAllowed() {
	AuthzDecisions.WithLabelValues("allowed", "").Inc()
}

func RecordAuthzDenied(reason string) {
	AuthzDecisions.WithLabelValues("denied", reason).Inc()
}
