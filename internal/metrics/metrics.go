// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification results.
const (
	ResultCreated    = "created"
	ResultSuppressed = "suppressed"
	ResultDropped    = "dropped"
	ResultFailed     = "failed"
)

var (
	// Votes counts accepted vote casts by value ("up" or "down").
	Votes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "askboard",
		Name:      "votes_total",
		Help:      "Reply votes cast, by direction.",
	}, []string{"value"})

	// Notifications counts fan-out outcomes by notification type.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "askboard",
		Name:      "notifications_total",
		Help:      "Notification fan-out outcomes.",
	}, []string{"type", "result"})

	// NotifyQueueDepth is the number of events waiting in the async dispatcher.
	NotifyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "askboard",
		Name:      "notify_queue_depth",
		Help:      "Events waiting in the notification queue.",
	})
)

// VoteLabel maps a vote value to its label.
func VoteLabel(value int) string {
	if value > 0 {
		return "up"
	}
	return "down"
}
