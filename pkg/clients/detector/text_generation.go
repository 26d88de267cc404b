package detector

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const textGenerationDetectorEndpoint = "/api/v1/text/generation"

// TextGenerationClient calls a detector's /api/v1/text/generation
// endpoint, which analyzes a prompt/response pair.
type TextGenerationClient struct {
	base
}

// NewTextGenerationClient builds a client for one detector service.
func NewTextGenerationClient(cfg httpclient.Config) *TextGenerationClient {
	return &TextGenerationClient{base: newBase(cfg)}
}

// GenerationDetectionRequest runs detection on a prompt/generated-text
// pair.
type GenerationDetectionRequest struct {
	Prompt         string               `json:"prompt"`
	GeneratedText  string               `json:"generated_text"`
	DetectorParams types.DetectorParams `json:"detector_params"`
}

// TextGeneration runs detection on request.
func (c *TextGenerationClient) TextGeneration(ctx context.Context, modelID string, request GenerationDetectionRequest, headers map[string]string) ([]types.DetectionResult, error) {
	var result []types.DetectionResult
	if err := handle(ctx, c.base, modelID, textGenerationDetectorEndpoint, request, headers, &result); err != nil {
		return nil, err
	}
	return result, nil
}
