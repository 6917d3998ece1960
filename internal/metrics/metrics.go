package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Total number of pipeline runs, labelled by format and outcome.",
	}, []string{"format", "outcome"})

	AnomaliesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_anomalies_detected_total",
		Help: "Total number of anomaly tags emitted, labelled by tag.",
	}, []string{"tag"})

	RiskAssessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_risk_assessments_total",
		Help: "Total number of risk assessments, labelled by level.",
	}, []string{"level"})

	ActionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_actions_dispatched_total",
		Help: "Total number of dispatched actions, labelled by route and status.",
	}, []string{"route", "status"})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_extraction_duration_seconds",
		Help:    "Extraction port call latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	ActivitiesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_activities_recorded_total",
		Help: "Total number of activity records appended to the store.",
	})
)
