package mapsite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anomonus",
		Subsystem: "mapsite",
		Name:      "requests_total",
		Help:      "Requests to the map website API by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "anomonus",
		Subsystem: "mapsite",
		Name:      "request_duration_seconds",
		Help:      "Latency of map website API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)
