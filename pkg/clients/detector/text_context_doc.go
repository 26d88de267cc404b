package detector

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const textContextDocDetectorEndpoint = "/api/v1/text/context/doc"

// ContextType is the kind of context a context-doc detection request
// carries.
type ContextType string

const (
	ContextTypeDocument ContextType = "docs"
	ContextTypeURL      ContextType = "url"
)

// TextContextDocClient calls a detector's /api/v1/text/context/doc
// endpoint.
type TextContextDocClient struct {
	base
}

// NewTextContextDocClient builds a client for one detector service.
func NewTextContextDocClient(cfg httpclient.Config) *TextContextDocClient {
	return &TextContextDocClient{base: newBase(cfg)}
}

// ContextDocsDetectionRequest runs detection on Content against Context.
type ContextDocsDetectionRequest struct {
	Content        string               `json:"content"`
	ContextType    ContextType          `json:"context_type"`
	Context        []string             `json:"context"`
	DetectorParams types.DetectorParams `json:"detector_params"`
}

// TextContextDoc runs detection on request.Content.
func (c *TextContextDocClient) TextContextDoc(ctx context.Context, modelID string, request ContextDocsDetectionRequest, headers map[string]string) ([]types.DetectionResult, error) {
	var result []types.DetectionResult
	if err := handle(ctx, c.base, modelID, textContextDocDetectorEndpoint, request, headers, &result); err != nil {
		return nil, err
	}
	return result, nil
}
