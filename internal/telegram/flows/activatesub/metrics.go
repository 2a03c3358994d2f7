package activatesub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeActivated   = "activated"
	outcomeUnknownUser = "unknown_user"
	outcomeFailed      = "failed"
	outcomeBadPayload  = "bad_payload"
	outcomeUnknownTier = "unknown_tier"

	tierUnknown = "unknown"
)

var paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "anomonus",
	Name:      "payments_total",
	Help:      "Successful payments by tier and activation outcome.",
}, []string{"tier", "outcome"})
