package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecotainment_transaction_transitions_total",
		Help: "Committed transaction status changes by target status.",
	}, []string{"status"})

	transactionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecotainment_transactions_created_total",
		Help: "Transactions created at checkout.",
	})

	eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecotainment_event_publish_failures_total",
		Help: "Domain events that could not be published.",
	})
)
