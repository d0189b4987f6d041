package users

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "runningsport"

// Operation outcomes.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	userOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "operations_total",
			Help:      "Total user service operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "auth_attempts_total",
			Help:      "Total credential exchanges by result",
		},
		[]string{"result"},
	)
)

// recordOperation records the outcome of a service operation.
func recordOperation(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	userOperations.WithLabelValues(operation, outcome).Inc()
}

// recordAuthAttempt records a credential exchange result.
func recordAuthAttempt(ok bool) {
	result := "accepted"
	if !ok {
		result = "rejected"
	}
	authAttempts.WithLabelValues(result).Inc()
}
