package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	accessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgc_access_decisions_total",
			Help: "Authorization decisions by resource kind, action and outcome.",
		},
		[]string{"kind", "action", "outcome"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgc_transitions_total",
			Help: "Committed subprocess transitions by process type and target state.",
		},
		[]string{"process_type", "to_state"},
	)
)

// Init registers the module metrics in the default registry.
func Init() {
	prometheus.MustRegister(accessDecisions, transitionsTotal)
}

// Handler exposes the prometheus scrape endpoint for embedding applications.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDecision counts one authorization decision.
func ObserveDecision(kind, action string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "granted"
	}
	accessDecisions.WithLabelValues(kind, action, outcome).Inc()
}

// ObserveTransition counts one committed subprocess transition.
func ObserveTransition(processType, toState string) {
	transitionsTotal.WithLabelValues(processType, toState).Inc()
}
