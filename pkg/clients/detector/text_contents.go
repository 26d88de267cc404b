package detector

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const contentsDetectorEndpoint = "/api/v1/text/contents"

// TextContentsClient calls a detector's /api/v1/text/contents endpoint.
type TextContentsClient struct {
	base
}

// NewTextContentsClient builds a client for one detector service.
func NewTextContentsClient(cfg httpclient.Config) *TextContentsClient {
	return &TextContentsClient{base: newBase(cfg)}
}

// TextContentsRequest analyzes each of Contents independently; results
// are returned in the same order.
type TextContentsRequest struct {
	Contents       []string             `json:"contents"`
	DetectorParams types.DetectorParams `json:"detector_params"`
}

// TextContents runs detection on request.Contents. The detector
// response is one detection list per content item; callers that sent a
// single content item get a single-element slice back.
func (c *TextContentsClient) TextContents(ctx context.Context, modelID string, request TextContentsRequest, headers map[string]string) ([][]types.Detection, error) {
	var result [][]types.Detection
	if err := handle(ctx, c.base, modelID, contentsDetectorEndpoint, request, headers, &result); err != nil {
		return nil, err
	}
	return result, nil
}
