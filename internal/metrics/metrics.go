package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgdparser",
			Name:      "documents_processed_total",
			Help:      "Source documents processed by kind and result",
		},
		[]string{"kind", "result"},
	)

	stageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sgdparser",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	pipelineLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sgdparser",
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end duration of one document pipeline",
			Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgdparser",
			Name:      "cache_events_total",
			Help:      "Cache lookups by scope and outcome (hit, miss, changed, error)",
		},
		[]string{"scope", "outcome"},
	)

	alertsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgdparser",
			Name:      "alerts_total",
			Help:      "Page alerts by kind",
		},
		[]string{"kind"},
	)

	extractionReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgdparser",
			Name:      "extraction_requests_total",
			Help:      "Field extraction requests by result",
		},
		[]string{"result"},
	)

	segmentsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgdparser",
			Name:      "segments_total",
			Help:      "Segments produced by document type",
		},
		[]string{"doc_type"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(documentsProcessed, stageLatency, pipelineLatency, cacheEvents, alertsEmitted, extractionReqs, segmentsBuilt)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncDocument(kind, result string) { documentsProcessed.WithLabelValues(kind, result).Inc() }

func ObserveStage(stage string, dur time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(dur.Seconds())
}

func ObservePipeline(dur time.Duration) { pipelineLatency.Observe(dur.Seconds()) }

func IncCache(scope, outcome string) { cacheEvents.WithLabelValues(scope, outcome).Inc() }

func IncAlert(kind string) { alertsEmitted.WithLabelValues(kind).Inc() }

func IncExtraction(result string) { extractionReqs.WithLabelValues(result).Inc() }

func IncSegment(docType string) { segmentsBuilt.WithLabelValues(docType).Inc() }
