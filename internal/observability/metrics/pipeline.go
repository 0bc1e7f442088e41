package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

// PipelineMetrics instruments retrieval pipeline outcomes. It registers into
// the registry it is given so api and worker can expose it on their existing
// /metrics endpoints.
type PipelineMetrics struct {
	service string

	decisionTotal      *prometheus.CounterVec
	buildDuration      *prometheus.HistogramVec
	judgeFailOpenTotal *prometheus.CounterVec
	candidateCount     *prometheus.HistogramVec
	chunkCount         *prometheus.HistogramVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	decisionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pa",
			Subsystem: "pipeline",
			Name:      "decisions_total",
			Help:      "Total pipeline outcomes by decision and gate stage.",
		},
		[]string{"service", "decision", "stage"},
	)
	buildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pa",
			Subsystem: "pipeline",
			Name:      "build_duration_seconds",
			Help:      "Context build duration in seconds by decision.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "decision"},
	)
	judgeFailOpenTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pa",
			Subsystem: "pipeline",
			Name:      "judge_fail_open_total",
			Help:      "Total relevance judge failures that were treated as YES.",
		},
		[]string{"service"},
	)
	candidateCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pa",
			Subsystem: "pipeline",
			Name:      "candidates",
			Help:      "Distribution of corpus candidates per request.",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 400},
		},
		[]string{"service"},
	)
	chunkCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pa",
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Distribution of fused chunks per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)

	registerer.MustRegister(decisionTotal, buildDuration, judgeFailOpenTotal, candidateCount, chunkCount)

	return &PipelineMetrics{
		service:            service,
		decisionTotal:      decisionTotal,
		buildDuration:      buildDuration,
		judgeFailOpenTotal: judgeFailOpenTotal,
		candidateCount:     candidateCount,
		chunkCount:         chunkCount,
	}
}

func (m *PipelineMetrics) ContextBuilt(decision domain.Decision, stage string, candidates, chunks int, duration time.Duration) {
	if stage == "" {
		stage = "none"
	}
	m.decisionTotal.WithLabelValues(m.service, string(decision), stage).Inc()
	m.buildDuration.WithLabelValues(m.service, string(decision)).Observe(duration.Seconds())
	m.candidateCount.WithLabelValues(m.service).Observe(float64(candidates))
	m.chunkCount.WithLabelValues(m.service).Observe(float64(chunks))
}

func (m *PipelineMetrics) JudgeFailedOpen() {
	m.judgeFailOpenTotal.WithLabelValues(m.service).Inc()
}
