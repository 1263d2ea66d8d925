// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatSessionsActive tracks chat sessions currently open.
	ChatSessionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of open chat sessions",
		},
		[]string{"tenant_id"},
	)

	// ChatMessagesTotal tracks chat messages appended.
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages appended",
		},
		[]string{"tenant_id", "sender"},
	)

	// BotMatchesTotal tracks bot replies by outcome (matched or fallback).
	BotMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_matches_total",
			Help: "Total bot match attempts by outcome",
		},
		[]string{"tenant_id", "outcome"},
	)

	// QuotaDenialsTotal tracks creations rejected by subscription limits.
	QuotaDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Total creations denied by quota",
		},
		[]string{"tenant_id", "resource"},
	)

	// AccessDenialsTotal tracks authorization denials.
	AccessDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denials_total",
			Help: "Total authorization denials",
		},
		[]string{"role", "action"},
	)

	// EventsPublishedTotal tracks chat events handed to the push channel.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_published_total",
			Help: "Total chat session events published",
		},
		[]string{"type"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
