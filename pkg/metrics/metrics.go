// Package metrics exposes Prometheus counters for sign-in, webhook and
// session enrichment outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	SignInAllowed = "allowed"
	SignInDenied  = "denied"

	WebhookProcessed        = "processed"
	WebhookIgnored          = "ignored"
	WebhookFailed           = "failed"
	WebhookInvalidSignature = "invalid_signature"

	EnrichmentActive = "active"
	EnrichmentNone   = "none"
	EnrichmentError  = "error"
)

// Recorder is what services report to.
type Recorder interface {
	RecordSignIn(provider, result string)
	RecordWebhook(eventType, outcome string)
	RecordWebhookLatency(d time.Duration)
	RecordEnrichment(outcome string)
}

// Collector records to Prometheus.
type Collector struct {
	signIns        *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	webhookLatency prometheus.Histogram
	enrichments    *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignews_sign_ins_total",
			Help: "Sign-in attempts by provider and result.",
		}, []string{"provider", "result"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignews_webhook_events_total",
			Help: "Billing webhook deliveries by event type and outcome.",
		}, []string{"type", "outcome"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ignews_webhook_duration_seconds",
			Help:    "Time spent handling a billing webhook delivery.",
			Buckets: prometheus.DefBuckets,
		}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ignews_session_enrichments_total",
			Help: "Session reads by active subscription lookup outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.signIns, c.webhookEvents, c.webhookLatency, c.enrichments)
	return c
}

func (c *Collector) RecordSignIn(provider, result string) {
	c.signIns.WithLabelValues(provider, result).Inc()
}

// RecordWebhook counts a delivery. eventType is empty when the signature
// check failed before the payload could be read.
func (c *Collector) RecordWebhook(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	c.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (c *Collector) RecordWebhookLatency(d time.Duration) {
	c.webhookLatency.Observe(d.Seconds())
}

func (c *Collector) RecordEnrichment(outcome string) {
	c.enrichments.WithLabelValues(outcome).Inc()
}

// Handler serves the gatherer's metrics for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nop struct{}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nop{} }

func (nop) RecordSignIn(string, string)        {}
func (nop) RecordWebhook(string, string)       {}
func (nop) RecordWebhookLatency(time.Duration) {}
func (nop) RecordEnrichment(string)            {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = nop{}
)
