// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_triage_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_triage_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Lifecycle metrics
	EmailsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_triage_emails_ingested_total",
			Help: "Emails ingested, by classified intent",
		},
		[]string{"intent"},
	)

	ClassificationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_triage_classification_fallbacks_total",
			Help: "Ingests that used the fallback classification",
		},
	)

	Reassignments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_triage_reassignments_total",
			Help: "Manual team reassignments",
		},
	)

	RepliesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_triage_replies_saved_total",
			Help: "Agent replies persisted",
		},
	)

	// Oracle metrics
	OracleCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_triage_oracle_call_duration_seconds",
			Help:    "Oracle call latency by purpose and outcome",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose", "outcome"},
	)

	// Mailbox intake
	InboxMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_triage_inbox_messages_total",
			Help: "Mailbox messages processed by the poller, by result",
		},
		[]string{"result"}, // "ingested", "invalid", "failed"
	)
)

// Oracle call purposes.
const (
	PurposeClassify = "classify"
	PurposeReply    = "reply"
	PurposeFeedback = "feedback"
)
