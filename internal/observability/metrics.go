package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper library service.
// Collectors are registered via promauto with the default registry.
type Metrics struct {
	// HTTPRequests counts API requests, labeled by method, route and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPRequestDuration observes API latency in seconds, labeled by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// ReferenceAnalyses counts reference ranking runs.
	ReferenceAnalyses prometheus.Counter

	// ReferenceCandidates observes how many references survived the relevance filter per run.
	ReferenceCandidates prometheus.Histogram

	// NetworkBuilds counts citation network assemblies, labeled by depth.
	NetworkBuilds *prometheus.CounterVec

	// NetworkNodes observes node counts of assembled networks.
	NetworkNodes prometheus.Histogram

	// NetworkEdges observes edge counts of assembled networks.
	NetworkEdges prometheus.Histogram

	// LLMRequests counts LLM calls, labeled by provider, operation and status.
	LLMRequests *prometheus.CounterVec

	// LLMRequestDuration observes LLM call latency, labeled by provider and operation.
	LLMRequestDuration *prometheus.HistogramVec

	// LLMTokensUsed counts tokens, labeled by provider and token type.
	LLMTokensUsed *prometheus.CounterVec

	// MetadataLookups counts metadata resolutions, labeled by source and status.
	MetadataLookups *prometheus.CounterVec

	// MetadataCacheHits counts metadata served from cache.
	MetadataCacheHits prometheus.Counter

	// EventsPublished counts domain events written to the broker, labeled by type.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts domain events that could not be published, labeled by type.
	EventsFailed *prometheus.CounterVec

	// PDFAcquisitions counts acquisition outcomes, labeled by method and status.
	PDFAcquisitions *prometheus.CounterVec

	// PDFBytesStored counts bytes written to the blob store.
	PDFBytesStored prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// HTTP
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// Analysis
		ReferenceAnalyses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_analyses_total",
			Help:      "Total number of reference ranking runs",
		}),
		ReferenceCandidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reference_candidates",
			Help:      "References remaining after the relevance filter",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		NetworkBuilds: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citation_network_builds_total",
			Help:      "Total number of citation network assemblies",
		}, []string{"depth"}),
		NetworkNodes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "citation_network_nodes",
			Help:      "Nodes per assembled citation network",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		NetworkEdges: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "citation_network_edges",
			Help:      "Edges per assembled citation network",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),

		// LLM
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM API requests",
		}, []string{"provider", "operation", "status"}),
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM API request latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "operation"}),
		LLMTokensUsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of LLM tokens consumed",
		}, []string{"provider", "type"}),

		// Metadata
		MetadataLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_lookups_total",
			Help:      "Total number of metadata source lookups",
		}, []string{"source", "status"}),
		MetadataCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_cache_hits_total",
			Help:      "Total number of metadata lookups served from cache",
		}),

		// Events
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		}, []string{"type"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of domain events that failed to publish",
		}, []string{"type"}),

		// PDFs
		PDFAcquisitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_acquisitions_total",
			Help:      "Total number of PDF acquisition attempts",
		}, []string{"method", "status"}),
		PDFBytesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_bytes_stored_total",
			Help:      "Total bytes of PDF content written to the blob store",
		}),
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordReferenceAnalysis records one ranking run and its candidate count.
func (m *Metrics) RecordReferenceAnalysis(candidates int) {
	m.ReferenceAnalyses.Inc()
	m.ReferenceCandidates.Observe(float64(candidates))
}

// RecordNetworkBuild records one network assembly.
func (m *Metrics) RecordNetworkBuild(depth string, nodes, edges int) {
	m.NetworkBuilds.WithLabelValues(depth).Inc()
	m.NetworkNodes.Observe(float64(nodes))
	m.NetworkEdges.Observe(float64(edges))
}

// RecordLLMRequest records an LLM call with its outcome and token usage.
func (m *Metrics) RecordLLMRequest(provider, operation, status string, durationSeconds float64, inputTokens, outputTokens int) {
	m.LLMRequests.WithLabelValues(provider, operation, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, operation).Observe(durationSeconds)
	if inputTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordMetadataLookup records a metadata source lookup.
func (m *Metrics) RecordMetadataLookup(source, status string) {
	m.MetadataLookups.WithLabelValues(source, status).Inc()
}

// RecordMetadataCacheHit records a lookup answered by the cache.
func (m *Metrics) RecordMetadataCacheHit() {
	m.MetadataCacheHits.Inc()
}

// RecordEventPublished records a successful publish.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventFailed records a failed publish.
func (m *Metrics) RecordEventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}

// RecordPDFAcquisition records the outcome of an acquisition attempt.
func (m *Metrics) RecordPDFAcquisition(method, status string, bytes int64) {
	m.PDFAcquisitions.WithLabelValues(method, status).Inc()
	if bytes > 0 {
		m.PDFBytesStored.Add(float64(bytes))
	}
}
