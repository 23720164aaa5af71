package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	IngestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masterdata_ingestions_total",
			Help: "Total number of masterdata ingestion requests (count)",
		},
		[]string{"status"},
	)

	IngestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "masterdata_ingestion_duration_ms",
			Help:    "End-to-end ingestion duration in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	RedactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redactions_total",
			Help: "Total number of fields redacted (count)",
		},
		[]string{"organization_id"},
	)

	RedactionRulesFetched = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redaction_rules_fetched",
			Help:    "Number of redaction rules fetched per ingestion (count)",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_publishes_total",
			Help: "Total number of broker publishes (count)",
		},
		[]string{"queue", "status"},
	)

	PublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broker_publish_duration_ms",
			Help:    "Broker publish duration including confirm wait in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"queue"},
	)

	DrainedMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holding_drained_messages_total",
			Help: "Total number of messages drained from the holding queue (count)",
		},
		[]string{"status"},
	)

	DeadLetterRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dead_letter_retries_total",
			Help: "Total number of messages recovered from the dead-letter queue (count)",
		},
		[]string{"target"},
	)

	BrokerReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_reconnects_total",
			Help: "Total number of scheduled broker reconnection attempts (count)",
		},
	)

	BrokerChannelUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_channel_up",
			Help: "Whether the primary confirm channel is available (1) or not (0)",
		},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "broker_queue_depth",
			Help: "Last observed message count per queue (count)",
		},
		[]string{"queue"},
	)

	QueuePaused = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_paused",
			Help: "Whether processing is administratively paused (1) or not (0)",
		},
		[]string{"kind"},
	)

	CollaboratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_requests_total",
			Help: "Total number of requests to external collaborators (count)",
		},
		[]string{"collaborator", "status"},
	)

	CollaboratorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_request_duration_ms",
			Help:    "Duration of collaborator requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"collaborator"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"operation", "status"},
	)
)

func RegisterIngestionMetrics() {
	prometheus.MustRegister(IngestionsTotal)
	prometheus.MustRegister(IngestionDuration)
	prometheus.MustRegister(RedactionsTotal)
	prometheus.MustRegister(RedactionRulesFetched)
	prometheus.MustRegister(CollaboratorRequestsTotal)
	prometheus.MustRegister(CollaboratorRequestDuration)
	prometheus.MustRegister(CircuitBreakerState)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(PublishesTotal)
	prometheus.MustRegister(PublishDuration)
	prometheus.MustRegister(DrainedMessagesTotal)
	prometheus.MustRegister(DeadLetterRetriesTotal)
	prometheus.MustRegister(BrokerReconnectsTotal)
	prometheus.MustRegister(BrokerChannelUp)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(QueuePaused)
}

func RegisterManagementMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(DatabaseQueriesTotal)
}

func ObserveIngestionDuration(duration time.Duration, status string) {
	IngestionDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObservePublishDuration(queue string, duration time.Duration) {
	PublishDuration.WithLabelValues(queue).Observe(float64(duration.Milliseconds()))
}

func ObserveCollaboratorDuration(collaborator string, duration time.Duration) {
	CollaboratorRequestDuration.WithLabelValues(collaborator).Observe(float64(duration.Milliseconds()))
}

func SetQueuePaused(kind string, paused bool) {
	v := 0.0
	if paused {
		v = 1.0
	}
	QueuePaused.WithLabelValues(kind).Set(v)
}

func SetQueueDepth(queue string, depth int) {
	QueueDepth.WithLabelValues(queue).Set(float64(depth))
}
