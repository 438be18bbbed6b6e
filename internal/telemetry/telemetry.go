// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for the study search service.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MetricsNamespace is the namespace for all service metrics.
	MetricsNamespace = "study_search"

	serviceName = "study-search"
)

// Provider outcomes recorded by RecordProvider.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeCircuitOpen = "circuit_open"
)

// Moderation stages recorded by RecordBlocked.
const (
	StageQuery  = "query"
	StageResult = "result"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Providers
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	// Moderation
	ModerationBlocked *prometheus.CounterVec

	// Summary cache
	SummaryCacheHits   prometheus.Counter
	SummaryCacheMisses prometheus.Counter
}

// Provider bundles the metrics, the tracer and the registry they are exported from.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics

	gatherer prometheus.Gatherer
}

// NewProvider registers all metrics on a fresh registry.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  NewMetrics(reg),
		gatherer: reg,
	}
}

// NewMetrics creates and registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initHTTPMetrics(factory)
	m.initProviderMetrics(factory)
	m.initModerationMetrics(factory)
	m.initCacheMetrics(factory)

	return m
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
}

func (m *Metrics) initProviderMetrics(factory promauto.Factory) {
	m.ProviderRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Upstream provider calls by source and outcome",
	}, []string{"source", "outcome"})

	m.ProviderDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: "provider",
		Name:      "duration_seconds",
		Help:      "Upstream provider latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	m.BreakerState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: "provider",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state per source (0=closed, 1=open, 2=half-open)",
	}, []string{"source"})
}

func (m *Metrics) initModerationMetrics(factory promauto.Factory) {
	m.ModerationBlocked = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "moderation",
		Name:      "blocked_total",
		Help:      "Queries and results rejected by the content filter",
	}, []string{"stage"})
}

func (m *Metrics) initCacheMetrics(factory promauto.Factory) {
	m.SummaryCacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "summary_cache",
		Name:      "hits_total",
		Help:      "Summaries served from the cache",
	})

	m.SummaryCacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "summary_cache",
		Name:      "misses_total",
		Help:      "Summary lookups that fell through to the model",
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// RecordProvider records one upstream call.
func (p *Provider) RecordProvider(source, outcome string, duration time.Duration) {
	p.Metrics.ProviderRequests.WithLabelValues(source, outcome).Inc()
	if outcome != OutcomeCircuitOpen && outcome != OutcomeUnavailable {
		p.Metrics.ProviderDuration.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// SetBreakerState exports the numeric state of a provider's circuit breaker.
func (p *Provider) SetBreakerState(source string, state int) {
	p.Metrics.BreakerState.WithLabelValues(source).Set(float64(state))
}

// RecordBlocked counts items rejected by the content filter.
func (p *Provider) RecordBlocked(stage string, count int) {
	if count <= 0 {
		return
	}
	p.Metrics.ModerationBlocked.WithLabelValues(stage).Add(float64(count))
}

// RecordCacheLookup counts a summary cache hit or miss.
func (p *Provider) RecordCacheLookup(hit bool) {
	if hit {
		p.Metrics.SummaryCacheHits.Inc()
		return
	}
	p.Metrics.SummaryCacheMisses.Inc()
}

// StartSpan starts a new trace span.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Middleware records request counts and latency keyed by the matched route.
func (p *Provider) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.Metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		p.Metrics.RequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
