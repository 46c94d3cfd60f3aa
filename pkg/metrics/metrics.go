package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EligibilityDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerspace_eligibility_decisions_total",
		Help: "Equipment access decisions by outcome.",
	}, []string{"outcome"})

	ModuleSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerspace_module_submissions_total",
		Help: "Graded training module submissions by result.",
	}, []string{"result"})

	ReservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerspace_reservation_transitions_total",
		Help: "Reservation status transitions by target status and outcome.",
	}, []string{"status", "outcome"})

	AuditLogWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerspace_audit_log_writes_total",
		Help: "Audit log rows written by category.",
	}, []string{"category"})

	CardSwipes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerspace_card_swipes_total",
		Help: "Card reader swipes by outcome.",
	}, []string{"outcome"})
)

// Outcome labels.
const (
	Granted  = "granted"
	Denied   = "denied"
	Unknown  = "unknown_card"
	Passed   = "passed"
	Failed   = "failed"
	Applied  = "applied"
	Rejected = "rejected"
)

// Bool maps a decision to the granted/denied labels.
func Bool(ok bool) string {
	if ok {
		return Granted
	}
	return Denied
}
