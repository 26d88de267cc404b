package handlers

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/trace"

	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"github.com/guardrails/orchestrator/pkg/types"
)

// DetectionOnGenerationResult is the response shape for the
// DetectionOnGeneration task (spec.md §8 scenarios S1-S3).
type DetectionOnGenerationResult struct {
	Detections []types.Detection `json:"detections"`
}

// DetectionOnGeneration runs every configured TextGeneration-category
// detector against an already-produced prompt/generated-text pair; no
// generation backend is invoked.
func DetectionOnGeneration(ctx context.Context, octx *orchestrator.Context, task orchestrator.DetectionOnGenerationTask) (*DetectionOnGenerationResult, error) {
	return orchestrator.DispatchUnary(ctx, func() (*DetectionOnGenerationResult, error) {
		log.Printf("trace=%s task=detection_on_generation started", task.TraceID)

		return telemetry.RecordSpan(ctx, octx.Tracer(), telemetry.SpanOptions{
			Name:        "guardrails.detection_on_generation",
			Attributes:  telemetry.GetBaseAttributes("detection_on_generation", task.TraceID, octx.Telemetry, task.Headers),
			EndWhenDone: true,
		}, func(ctx context.Context, _ trace.Span) (*DetectionOnGenerationResult, error) {
			if len(task.Detectors) == 0 {
				return nil, orcherrors.Validation("`detectors` is required")
			}
			for id := range task.Detectors {
				cfg, ok := octx.Config.Detectors[id]
				if !ok {
					return nil, orcherrors.DetectorNotFound(id)
				}
				if cfg.Type != config.DetectorTypeTextGeneration {
					return nil, orcherrors.Validation("detector `%s` is not supported by this endpoint", id)
				}
			}

			detections, err := common.GenerationDetections(ctx, octx, task.Headers, task.Detectors, task.Prompt, task.GeneratedText)
			if err != nil {
				return nil, err
			}
			if detections == nil {
				detections = []types.Detection{}
			}
			return &DetectionOnGenerationResult{Detections: detections}, nil
		})
	})
}
