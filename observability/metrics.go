// Package observability provides Prometheus metrics for login modules,
// chains and authorization checks.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeStoreFailure       = "store_failure"
	OutcomeCallbackFailure    = "callback_failure"
	OutcomeFailure            = "failure"
	OutcomeGranted            = "granted"
	OutcomeDenied             = "denied"
	OutcomeError              = "error"
)

var (
	// LoginAttemptsTotal counts login-phase attempts by module and outcome.
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_login_attempts_total",
			Help: "Login attempts",
		},
		[]string{"module", "outcome"},
	)

	// LoginPhaseTotal counts commit, abort and logout calls by result.
	LoginPhaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_login_phase_total",
			Help: "Login module phase transitions",
		},
		[]string{"phase", "result"},
	)

	// ChainOutcomesTotal counts overall chain results.
	ChainOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_chain_outcomes_total",
			Help: "Login chain outcomes",
		},
		[]string{"chain", "outcome"},
	)

	// AuthorizationChecksTotal counts principal authorization checks.
	AuthorizationChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authorization_checks_total",
			Help: "Authorization checks",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		LoginPhaseTotal,
		ChainOutcomesTotal,
		AuthorizationChecksTotal,
	)
}

// BoolResult maps a phase return value to a label.
func BoolResult(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}
