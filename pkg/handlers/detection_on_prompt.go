package handlers

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/trace"

	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"github.com/guardrails/orchestrator/pkg/types"
)

// DetectionOnPromptResult is the response shape for the
// DetectionOnPrompt task.
type DetectionOnPromptResult struct {
	Detections []types.Detection `json:"detections"`
}

// DetectionOnPrompt runs detection directly on a prompt; no generation
// backend is invoked. Every named detector must be configured as either
// TextContents or TextContextDoc, and all named detectors must share
// the same category within a single request.
func DetectionOnPrompt(ctx context.Context, octx *orchestrator.Context, task orchestrator.DetectionOnPromptTask) (*DetectionOnPromptResult, error) {
	return orchestrator.DispatchUnary(ctx, func() (*DetectionOnPromptResult, error) {
		log.Printf("trace=%s task=detection_on_prompt started", task.TraceID)

		return telemetry.RecordSpan(ctx, octx.Tracer(), telemetry.SpanOptions{
			Name:        "guardrails.detection_on_prompt",
			Attributes:  telemetry.GetBaseAttributes("detection_on_prompt", task.TraceID, octx.Telemetry, task.Headers),
			EndWhenDone: true,
		}, func(ctx context.Context, _ trace.Span) (*DetectionOnPromptResult, error) {
			if len(task.Detectors) == 0 {
				return nil, orcherrors.Validation("`detectors` is required")
			}

			var category config.DetectorType
			for id := range task.Detectors {
				cfg, ok := octx.Config.Detectors[id]
				if !ok {
					return nil, orcherrors.DetectorNotFound(id)
				}
				if cfg.Type != config.DetectorTypeTextContents && cfg.Type != config.DetectorTypeTextContextDoc {
					return nil, orcherrors.Validation("detector `%s` is not supported by this endpoint", id)
				}
				if category == "" {
					category = cfg.Type
				} else if category != cfg.Type {
					return nil, orcherrors.Validation("detector `%s` is not supported by this endpoint", id)
				}
			}

			var detections []types.Detection
			var err error
			if category == config.DetectorTypeTextContextDoc {
				detections, err = common.ContextDetections(ctx, octx, task.Headers, task.Detectors, task.Inputs, detector.ContextType(task.ContextType), task.Context)
			} else {
				regions := []common.Region{{Offset: 0, Text: task.Inputs}}
				detections, err = common.TextContentsDetections(ctx, octx, task.Headers, task.Detectors, 0, regions)
			}
			if err != nil {
				return nil, err
			}
			if detections == nil {
				detections = []types.Detection{}
			}
			return &DetectionOnPromptResult{Detections: detections}, nil
		})
	})
}
