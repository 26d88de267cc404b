// Package handlers implements one function per task variant named in
// spec.md §2, translating an orchestrator.*Task value into the
// detection/generation pipeline calls described in spec.md §4.
package handlers

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/trace"

	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"github.com/guardrails/orchestrator/pkg/types"
)

// ClassificationWithGen runs input detection, generation, and output
// detection around a single generation call (spec.md §4.2's unary
// state machine).
func ClassificationWithGen(ctx context.Context, octx *orchestrator.Context, task orchestrator.ClassificationWithGenTask) (*types.ClassifiedGeneratedTextResult, error) {
	return orchestrator.DispatchUnary(ctx, func() (*types.ClassifiedGeneratedTextResult, error) {
		log.Printf("trace=%s task=classification_with_gen started", task.TraceID)

		return telemetry.RecordSpan(ctx, octx.Tracer(), telemetry.SpanOptions{
			Name:        "guardrails.classification_with_gen",
			Attributes:  telemetry.GetBaseAttributes("classification_with_gen", task.TraceID, octx.Telemetry, task.Headers),
			EndWhenDone: true,
		}, func(ctx context.Context, _ trace.Span) (*types.ClassifiedGeneratedTextResult, error) {
			if detectors := task.GuardrailsConfig.InputDetectors(); len(detectors) > 0 {
				response, err := classificationInputDetection(ctx, octx, task, detectors)
				if err != nil {
					return nil, err
				}
				if response != nil {
					return response, nil
				}
			}

			client, err := octx.Generation()
			if err != nil {
				return nil, err
			}
			generation, err := common.Generate(ctx, client, task.Headers, task.ModelID, task.Inputs, task.TextGenParams)
			if err != nil {
				return nil, err
			}

			if detectors := task.GuardrailsConfig.OutputDetectors(); len(detectors) > 0 {
				return classificationOutputDetection(ctx, octx, task, detectors, generation)
			}
			return generation, nil
		})
	})
}

func classificationInputDetection(ctx context.Context, octx *orchestrator.Context, task orchestrator.ClassificationWithGenTask, detectors map[string]types.DetectorParams) (*types.ClassifiedGeneratedTextResult, error) {
	regions := common.ApplyMasks(task.Inputs, task.GuardrailsConfig.InputMasks())
	detections, err := common.TextContentsDetections(ctx, octx, task.Headers, detectors, 0, regions)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return nil, nil
	}

	client, err := octx.Generation()
	if err != nil {
		return nil, err
	}
	inputTokenCount, _, err := common.Tokenize(ctx, client, task.Headers, task.ModelID, task.Inputs)
	if err != nil {
		return nil, err
	}

	return &types.ClassifiedGeneratedTextResult{
		InputTokenCount: inputTokenCount,
		TokenClassificationResults: types.TokenClassificationResults{
			Input: detections,
		},
		Warnings: []types.DetectionWarning{types.NewUnsuitableInputWarning()},
	}, nil
}

func classificationOutputDetection(ctx context.Context, octx *orchestrator.Context, task orchestrator.ClassificationWithGenTask, detectors map[string]types.DetectorParams, generation *types.ClassifiedGeneratedTextResult) (*types.ClassifiedGeneratedTextResult, error) {
	var generatedText string
	if generation.GeneratedText != nil {
		generatedText = *generation.GeneratedText
	}
	detections, err := common.TextContentsDetections(ctx, octx, task.Headers, detectors, 0, []common.Region{{Offset: 0, Text: generatedText}})
	if err != nil {
		return nil, err
	}
	if len(detections) > 0 {
		generation.TokenClassificationResults.Output = detections
		generation.Warnings = []types.DetectionWarning{types.NewUnsuitableOutputWarning()}
	}
	return generation, nil
}
