package handlers

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/trace"

	"github.com/guardrails/orchestrator/pkg/clients/openai"
	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"github.com/guardrails/orchestrator/pkg/types"
)

// ChatCompletionsDetection runs input detection over the request
// messages, a chat-completions generation call, and output detection
// over the response choice (spec.md §4.3). Streaming requests are
// accepted but always fail with NotImplemented, matching the original
// implementation's unimplemented streaming branch (see SPEC_FULL.md's
// Supplemented Features).
func ChatCompletionsDetection(ctx context.Context, octx *orchestrator.Context, task orchestrator.ChatCompletionsDetectionTask) (*openai.ChatCompletion, error) {
	return orchestrator.DispatchUnary(ctx, func() (*openai.ChatCompletion, error) {
		log.Printf("trace=%s task=chat_completions_detection started", task.TraceID)

		return telemetry.RecordSpan(ctx, octx.Tracer(), telemetry.SpanOptions{
			Name:        "guardrails.chat_completions_detection",
			Attributes:  telemetry.GetBaseAttributes("chat_completions_detection", task.TraceID, octx.Telemetry, task.Headers),
			EndWhenDone: true,
		}, func(ctx context.Context, _ trace.Span) (*openai.ChatCompletion, error) {
			if task.Stream {
				return nil, orcherrors.NotImplemented("chat completions streaming is not implemented")
			}

			inputDetectors := task.GuardrailsConfig.InputDetectors()
			if len(inputDetectors) > 0 {
				messages, err := common.FilterChatMessages(task.Messages)
				if err != nil {
					return nil, err
				}
				detections, err := chatDetect(ctx, octx, task.Headers, inputDetectors, messages)
				if err != nil {
					return nil, err
				}
				if len(detections) > 0 {
					return &openai.ChatCompletion{
						Model:   task.Model,
						Choices: nil,
						Detections: &types.ChatDetections{
							Input:  detections,
							Output: []types.DetectionResult{},
						},
						Warnings: []types.DetectionWarning{types.NewUnsuitableInputWarning()},
					}, nil
				}
			}

			client, err := octx.ChatGeneration()
			if err != nil {
				return nil, err
			}
			result, err := client.ChatCompletions(ctx, openai.ChatCompletionsRequest{
				Model:    task.Model,
				Messages: openai.MessagesFromInternal(task.Messages),
				Tools:    task.Tools,
			}, task.Headers)
			if err != nil {
				return nil, orcherrors.ChatCompletionRequestFailed(task.Model, err)
			}

			outputDetectors := task.GuardrailsConfig.OutputDetectors()
			if len(outputDetectors) > 0 {
				responseMessages := chatMessagesFromChoices(result.Choices)
				detections, err := chatDetect(ctx, octx, task.Headers, outputDetectors, responseMessages)
				if err != nil {
					return nil, err
				}
				if len(detections) > 0 {
					result.Choices = nil
					result.Detections = &types.ChatDetections{
						Input:  []types.DetectionResult{},
						Output: detections,
					}
					result.Warnings = []types.DetectionWarning{types.NewUnsuitableOutputWarning()}
				}
			}
			return result, nil
		})
	})
}

func chatMessagesFromChoices(choices []openai.ChatCompletionChoice) []types.ChatMessageInternal {
	messages := make([]types.ChatMessageInternal, 0, len(choices))
	for _, c := range choices {
		content := c.Message.Content
		messages = append(messages, types.ChatMessageInternal{
			MessageIndex: c.Index,
			Role:         c.Message.Role,
			Content:      &types.Content{Text: content},
			Refusal:      c.Message.Refusal,
		})
	}
	return messages
}

func chatDetect(ctx context.Context, octx *orchestrator.Context, headers map[string]string, detectors map[string]types.DetectorParams, messages []types.ChatMessageInternal) ([]types.DetectionResult, error) {
	chunkerIDs, err := chunkerIDsFor(octx, detectors)
	if err != nil {
		return nil, err
	}
	chunksByChunker, err := common.ChunkChatMessages(ctx, octx, headers, chunkerIDs, messages)
	if err != nil {
		return nil, err
	}
	return common.ChatDetections(ctx, octx, headers, detectors, chunksByChunker)
}

func chunkerIDsFor(octx *orchestrator.Context, detectors map[string]types.DetectorParams) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for detectorID := range detectors {
		cfg, ok := octx.Config.Detectors[detectorID]
		if !ok {
			return nil, orcherrors.DetectorNotFound(detectorID)
		}
		if !seen[cfg.ChunkerID] {
			seen[cfg.ChunkerID] = true
			ids = append(ids, cfg.ChunkerID)
		}
	}
	return ids, nil
}
