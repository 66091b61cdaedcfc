package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for TaskTransitions
const (
	resultApplied  = "applied"
	resultNoop     = "noop"
	resultRejected = "rejected"
	resultNotFound = "not_found"
	resultError    = "error"
)

var TaskTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_transitions_total",
		Help: "Lifecycle actions by outcome",
	},
	[]string{"action", "result"},
)

func init() {
	prometheus.MustRegister(TaskTransitions)
}
