// Package metrics holds the Prometheus collectors of the receiver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes.
const (
	OutcomeStored   = "stored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Counters
var (
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_tone_deliveries_total",
		Help: "Total sound file deliveries by outcome",
	}, []string{"outcome"})
	DeliveredBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alarm_tone_delivered_bytes_total",
		Help: "Total bytes of stored sound files",
	})
	StoredByPriorityTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_tone_stored_deliveries_total",
		Help: "Stored sound files by alarm priority",
	}, []string{"priority"})
)

// Histograms
var (
	StoreLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alarm_tone_store_duration_seconds",
		Help:    "Time spent persisting one delivery",
		Buckets: prometheus.DefBuckets,
	})
)
