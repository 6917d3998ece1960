// Package service orchestrates the pipeline: classification, agent dispatch,
// action routing, activity recording, and the best-effort fan-out to the
// analytics sinks.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/agent"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/classify"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/client"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/memory"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/metrics"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// ErrUnsupportedInput marks an input shape the classifier cannot route.
var ErrUnsupportedInput = errors.New("unsupported input format")

const classifierName = "classifier_agent"
const routerName = "action_router"

// Sinks bundles the optional fan-out targets. Any field may be nil; a nil
// sink is skipped.
type Sinks struct {
	Publisher *client.ActivityPublisher
	Search    *client.ESClient
	Analytics *client.ClickHouseClient
}

// PipelineService is the request surface consumed by the HTTP layer.
type PipelineService struct {
	registry agent.Registry
	router   *action.Router
	store    memory.Store
	sinks    Sinks
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipelineService wires the pipeline. The store is injected, never a
// package singleton.
func NewPipelineService(
	registry agent.Registry,
	router *action.Router,
	store memory.Store,
	sinks Sinks,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		registry: registry,
		router:   router,
		store:    store,
		sinks:    sinks,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs the pipeline for a JSON-endpoint body (email_content or
// json_data channel). The returned record is the response envelope.
func (s *PipelineService) Process(ctx context.Context, raw model.RawInput) (model.ActivityRecord, error) {
	return s.run(ctx, raw)
}

// ProcessDocument runs the pipeline for uploaded PDF bytes. The upload path
// bypasses shape inspection and routes straight to the PDF agent.
func (s *PipelineService) ProcessDocument(ctx context.Context, fileBytes []byte) (model.ActivityRecord, error) {
	return s.run(ctx, model.RawInput{PDF: fileBytes})
}

func (s *PipelineService) run(ctx context.Context, raw model.RawInput) (model.ActivityRecord, error) {
	classification := classify.Classify(raw)
	if classification.Format == model.FormatUnsupported {
		metrics.PipelineRuns.WithLabelValues(string(classification.Format), "rejected").Inc()
		return model.ActivityRecord{}, ErrUnsupportedInput
	}

	a, ok := s.registry.Lookup(classification.Format)
	if !ok {
		// The registry covers every supported format; a miss is a wiring bug.
		metrics.PipelineRuns.WithLabelValues(string(classification.Format), "rejected").Inc()
		return model.ActivityRecord{}, ErrUnsupportedInput
	}

	result, err := a.Process(ctx, raw)
	if err != nil {
		// Nothing is persisted on agent failure: either the full record is
		// appended or none is.
		metrics.PipelineRuns.WithLabelValues(string(classification.Format), "error").Inc()
		return model.ActivityRecord{}, err
	}

	trace := append([]string{classifierName, a.Name()}, result.Trace...)

	var actionResult *model.ActionResult
	if result.Trigger != nil {
		res := s.router.Dispatch(*result.Trigger)
		actionResult = &res
		trace = append(trace, routerName)
		metrics.ActionsDispatched.WithLabelValues(result.Trigger.Route, string(res.Status)).Inc()
		s.logger.Info("action dispatched",
			util.String("route", result.Trigger.Route),
			util.String("status", string(res.Status)),
		)
	}

	rec := model.ActivityRecord{
		Source:          string(classification.Format),
		Timestamp:       s.now().UTC().Format(time.RFC3339),
		Classification:  classification,
		ExtractedFields: result.Fields,
		ActionTriggered: result.Trigger,
		ActionResult:    actionResult,
		AgentTrace:      trace,
	}

	stored, err := s.store.Append(ctx, rec)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(string(classification.Format), "error").Inc()
		return model.ActivityRecord{}, err
	}

	s.recordOutcome(stored)
	s.fanOut(ctx, stored)

	metrics.PipelineRuns.WithLabelValues(string(classification.Format), "success").Inc()
	metrics.ActivitiesRecorded.Inc()
	return stored, nil
}

// ListActivities returns all recorded runs in insertion order.
func (s *PipelineService) ListActivities(ctx context.Context) ([]model.ActivityRecord, error) {
	return s.store.GetAll(ctx)
}

// GetActivity returns one run or memory.ErrNotFound.
func (s *PipelineService) GetActivity(ctx context.Context, id int64) (model.ActivityRecord, error) {
	return s.store.GetByID(ctx, id)
}

func (s *PipelineService) recordOutcome(rec model.ActivityRecord) {
	if tags, ok := rec.ExtractedFields["anomalies"].([]model.AnomalyTag); ok {
		for _, t := range tags {
			metrics.AnomaliesDetected.WithLabelValues(string(t)).Inc()
		}
	}
	if level, ok := rec.ExtractedFields["risk_level"].(model.RiskLevel); ok {
		metrics.RiskAssessments.WithLabelValues(string(level)).Inc()
	}
}

// fanOut pushes the stored record to the optional sinks. Failures are logged
// and never affect the response: the record is already durable.
func (s *PipelineService) fanOut(ctx context.Context, rec model.ActivityRecord) {
	// Sinks should not be aborted by the request ending, but must not hang.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if s.sinks.Publisher != nil {
		if err := s.sinks.Publisher.Publish(sinkCtx, rec); err != nil {
			s.logger.Warn("activity publish failed",
				util.Int64("activity_id", rec.ID), util.ErrorField(err))
		}
	}
	if s.sinks.Search != nil {
		if err := s.sinks.Search.IndexActivity(sinkCtx, rec); err != nil {
			s.logger.Warn("activity indexing failed",
				util.Int64("activity_id", rec.ID), util.ErrorField(err))
		}
	}
	if s.sinks.Analytics != nil {
		if ev, ok := riskEventFor(rec); ok {
			if err := s.sinks.Analytics.InsertRiskEvent(sinkCtx, ev); err != nil {
				s.logger.Warn("risk analytics insert failed",
					util.Int64("activity_id", rec.ID), util.ErrorField(err))
			}
		}
	}
}

// riskEventFor builds the analytics row for structured-event runs; other
// formats carry no risk assessment and produce no row.
func riskEventFor(rec model.ActivityRecord) (client.RiskEvent, bool) {
	event, ok := rec.ExtractedFields["validated_data"].(model.ValidatedEvent)
	if !ok {
		return client.RiskEvent{}, false
	}
	level, ok := rec.ExtractedFields["risk_level"].(model.RiskLevel)
	if !ok {
		return client.RiskEvent{}, false
	}
	var anomalies []string
	if tags, ok := rec.ExtractedFields["anomalies"].([]model.AnomalyTag); ok {
		for _, t := range tags {
			anomalies = append(anomalies, string(t))
		}
	}
	occurred, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		occurred = time.Now().UTC()
	}
	return client.RiskEvent{
		ActivityID: rec.ID,
		EventType:  event.EventType,
		Source:     event.Source,
		RiskLevel:  level,
		Anomalies:  anomalies,
		OccurredAt: occurred,
	}, true
}
