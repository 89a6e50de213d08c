// Package metrics provides Prometheus metrics for the swim analytics engine.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Manager owns every collector exported by the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Codec and ingestion
	attemptsParsed   prometheus.Counter
	attemptsRejected *prometheus.CounterVec
	attemptsSkipped  prometheus.Counter

	// Analysis
	sessionsAnalyzed prometheus.Counter
	analysisLatency  prometheus.Histogram

	// Result pipeline
	resultsSubmitted prometheus.Counter
	resultsRecorded  prometheus.Counter
	personalBests    prometheus.Counter
	splitRejections  *prometheus.CounterVec

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Ranking index
	rankingEntries       *prometheus.GaugeVec
	rankingUpdateLatency prometheus.Histogram
	rankingQueryLatency  prometheus.Histogram

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swimstats",
		subsystem:        "engine",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.attemptsParsed = m.counter("attempts_parsed_total", "Time strings decoded into attempts")
	m.attemptsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("attempts_rejected_total"),
		Help:        "Attempts rejected during ingestion by reason",
		ConstLabels: m.customLabels,
	}, []string{"reason"})
	m.attemptsSkipped = m.counter("attempts_skipped_total", "Blank attempt cells skipped during ingestion")

	m.sessionsAnalyzed = m.counter("sessions_analyzed_total", "Training sessions analysed")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds", "Session analysis latency in milliseconds")

	m.resultsSubmitted = m.counter("results_submitted_total", "Competition results accepted into the pipeline")
	m.resultsRecorded = m.counter("results_recorded_total", "Competition results recorded after validation")
	m.personalBests = m.counter("personal_bests_total", "Recorded results that improved on the previous best")
	m.splitRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("split_rejections_total"),
		Help:        "Results rejected because of invalid split markers",
		ConstLabels: m.customLabels,
	}, []string{"kind"})

	m.queueSize = m.gauge("queue_size", "Result submissions waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue fill ratio (0-1)")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Submissions enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Submissions dequeued by workers")
	m.queueRejected = m.counter("queue_rejected_total", "Submissions refused by the queue")

	m.workerActiveCount = m.gauge("worker_active_count", "Workers running in the pool")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-submission processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Submissions that failed in a worker")

	m.rankingEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranking_entries"),
		Help:        "Swimmers ranked per style",
		ConstLabels: m.customLabels,
	}, []string{"style"})
	m.rankingUpdateLatency = m.histogram("ranking_update_latency_milliseconds", "Ranking index update latency in milliseconds")
	m.rankingQueryLatency = m.histogram("ranking_query_latency_milliseconds", "Ranking index query latency in milliseconds")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_total"),
		Help:        "Errors by component and type",
		ConstLabels: m.customLabels,
	}, []string{"component", "type"})
}

// RecordAttemptParsed counts a successfully decoded attempt.
func RecordAttemptParsed() {
	if globalManager.enabled {
		globalManager.attemptsParsed.Inc()
	}
}

// RecordAttemptRejected counts an attempt rejected for reason.
func RecordAttemptRejected(reason string) {
	if globalManager.enabled {
		globalManager.attemptsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordAttemptSkipped counts a blank cell.
func RecordAttemptSkipped() {
	if globalManager.enabled {
		globalManager.attemptsSkipped.Inc()
	}
}

// RecordSessionAnalyzed counts one analysis and its latency.
func RecordSessionAnalyzed(latencyMs float64) {
	if globalManager.enabled {
		globalManager.sessionsAnalyzed.Inc()
		globalManager.analysisLatency.Observe(latencyMs)
	}
}

// RecordResultSubmitted counts a result accepted into the pipeline.
func RecordResultSubmitted() {
	if globalManager.enabled {
		globalManager.resultsSubmitted.Inc()
	}
}

// RecordResultRecorded counts a recorded result; improved marks a personal best.
func RecordResultRecorded(improved bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.resultsRecorded.Inc()
	if improved {
		globalManager.personalBests.Inc()
	}
}

// RecordSplitRejection counts a result rejected for invalid splits.
func RecordSplitRejection(kind string) {
	if globalManager.enabled {
		globalManager.splitRejections.WithLabelValues(kind).Inc()
	}
}

// UpdateQueueSize sets the current queue length and utilisation.
func UpdateQueueSize(size, capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue counts an enqueued submission.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a dequeued submission.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueRejected counts a submission the queue refused.
func RecordQueueRejected() {
	if globalManager.enabled {
		globalManager.queueRejected.Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	if globalManager.enabled {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency observes per-submission latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError counts a failed submission.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// UpdateRankingEntries sets the number of ranked swimmers for style.
func UpdateRankingEntries(style string, count int) {
	if globalManager.enabled {
		globalManager.rankingEntries.WithLabelValues(style).Set(float64(count))
	}
}

// RecordRankingUpdateLatency observes ranking index write latency.
func RecordRankingUpdateLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.rankingUpdateLatency.Observe(latencyMs)
	}
}

// RecordRankingQueryLatency observes ranking index read latency.
func RecordRankingQueryLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.rankingQueryLatency.Observe(latencyMs)
	}
}

// RecordErrorByComponent counts an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// SinceMs returns the milliseconds elapsed since start, with sub-millisecond precision.
func SinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// GetRegistry returns the registry holding the engine metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteText renders every metric family in the Prometheus text exposition format.
func WriteText(w io.Writer) error {
	return writeText(w, customRegistry)
}

func writeText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
