// Package openai implements the chat-completions client used by the
// chat-completions-detection task. Only the unary shape is implemented;
// chat-completions streaming is an open question upstream (no framing
// contract is defined) and the handler returns NotImplemented for it.
package openai

import (
	"context"
	"encoding/json"
	"net/http"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const chatCompletionsEndpoint = "/chat/completions"

// Client calls a chat-completions-compatible generation backend.
type Client struct {
	client *httpclient.Client
}

// New builds an openai Client.
func New(cfg httpclient.Config) *Client {
	return &Client{client: httpclient.NewClient(cfg)}
}

// ChatCompletionsRequest is the request body, modeled after the OpenAI
// chat-completions API. ChatCompletions always forces Stream to false;
// the detectors field is intentionally absent here since downstream
// chat-completion servers reject unknown fields.
type ChatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []types.Message `json:"messages"`
	Tools       []types.Tool  `json:"tools,omitempty"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
}

// ChatCompletionChoice is one generated choice.
type ChatCompletionChoice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// ChoiceMessage is a generated message, including the assistant-only
// refusal field.
type ChoiceMessage struct {
	Role    types.Role `json:"role"`
	Content *string    `json:"content,omitempty"`
	Refusal *string    `json:"refusal,omitempty"`
}

// ChatCompletion is the unary chat-completions response, extended with
// the orchestrator's detection annotations.
type ChatCompletion struct {
	ID         string                `json:"id"`
	Object     string                `json:"object"`
	Created    int64                 `json:"created"`
	Model      string                `json:"model"`
	Choices    []ChatCompletionChoice `json:"choices"`
	Detections *types.ChatDetections  `json:"detections,omitempty"`
	Warnings   []types.DetectionWarning `json:"warnings,omitempty"`
}

type chatCompletionsError struct {
	Message string `json:"message"`
}

// ChatCompletions performs a unary chat-completions call.
func (c *Client) ChatCompletions(ctx context.Context, req ChatCompletionsRequest, headers map[string]string) (*ChatCompletion, error) {
	req.Stream = false

	var resp ChatCompletion
	_, err := c.client.PostJSON(ctx, chatCompletionsEndpoint, req, &resp, headers)
	if err != nil {
		if statusErr, ok := err.(*httpclient.StatusError); ok {
			message := "unknown error occurred"
			var cerr chatCompletionsError
			if jsonErr := json.Unmarshal(statusErr.Body, &cerr); jsonErr == nil && cerr.Message != "" {
				message = cerr.Message
			}
			return nil, clienterrors.Http(statusErr.StatusCode, message)
		}
		return nil, clienterrors.Http(http.StatusInternalServerError, err.Error())
	}
	return &resp, nil
}

// MessagesFromInternal converts ChatMessageInternal values back to wire
// Messages for a downstream chat-completions request.
func MessagesFromInternal(messages []types.ChatMessageInternal) []types.Message {
	out := make([]types.Message, len(messages))
	for i, m := range messages {
		out[i] = types.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
