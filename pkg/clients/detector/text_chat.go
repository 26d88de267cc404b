package detector

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const textChatDetectorEndpoint = "/api/v1/text/chat"

// TextChatClient calls a detector's /api/v1/text/chat endpoint.
type TextChatClient struct {
	base
}

// NewTextChatClient builds a client for one detector service.
func NewTextChatClient(cfg httpclient.Config) *TextChatClient {
	return &TextChatClient{base: newBase(cfg)}
}

// ChatDetectionRequest runs detection over a chat message sequence.
type ChatDetectionRequest struct {
	Messages       []types.Message      `json:"messages"`
	Tools          []types.Tool         `json:"tools"`
	DetectorParams types.DetectorParams `json:"detector_params"`
}

// TextChat runs detection on request.Messages.
func (c *TextChatClient) TextChat(ctx context.Context, modelID string, request ChatDetectionRequest, headers map[string]string) ([]types.DetectionResult, error) {
	var result []types.DetectionResult
	if err := handle(ctx, c.base, modelID, textChatDetectorEndpoint, request, headers, &result); err != nil {
		return nil, err
	}
	return result, nil
}
