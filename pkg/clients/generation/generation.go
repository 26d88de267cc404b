// Package generation implements GenerationClient: the unary and
// streaming interface to a text-generation backend. The gRPC
// batched-generation family and the streaming family are both modeled
// as HTTP+SSE endpoints so the core treats them uniformly (see
// SPEC_FULL.md's Domain Stack for why no protobuf-generated client is
// hand-authored here).
package generation

import (
	"context"
	"encoding/json"
	"net/http"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/sseio"
	"github.com/guardrails/orchestrator/pkg/types"
)

const (
	generateEndpoint       = "/api/v1/task/generate"
	generateStreamEndpoint = "/api/v1/task/generate-stream"
	tokenizeEndpoint       = "/api/v1/task/tokenize"
)

// Client calls one configured generation backend.
type Client struct {
	client *httpclient.Client
}

// New builds a generation Client.
func New(cfg httpclient.Config) *Client {
	return &Client{client: httpclient.NewClient(cfg)}
}

// Request is one generation call.
type Request struct {
	ModelID string
	Inputs  string
	Params  types.GenerationParams
}

type wireRequest struct {
	ModelID string                 `json:"model_id"`
	Inputs  string                 `json:"inputs"`
	Params  types.GenerationParams `json:"params"`
}

// frame is the wire shape shared by a unary response element and a
// streaming frame.
type frame struct {
	Text                string                 `json:"text"`
	StopReason          *types.FinishReason    `json:"stop_reason,omitempty"`
	GeneratedTokenCount *int                   `json:"generated_token_count,omitempty"`
	Seed                *int                   `json:"seed,omitempty"`
	InputTokenCount     int                    `json:"input_token_count"`
	Tokens              []types.GeneratedToken `json:"tokens,omitempty"`
	InputTokens         []types.GeneratedToken `json:"input_tokens,omitempty"`
}

type batchedResponse struct {
	Responses []frame `json:"responses"`
}

type generationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f frame) toResult() types.ClassifiedGeneratedTextResult {
	return types.ClassifiedGeneratedTextResult{
		GeneratedText:       strPtr(f.Text),
		FinishReason:        f.StopReason,
		GeneratedTokenCount: f.GeneratedTokenCount,
		Seed:                f.Seed,
		InputTokenCount:     f.InputTokenCount,
		Tokens:              f.Tokens,
		InputTokens:         f.InputTokens,
	}
}

func (f frame) toStreamResult() types.ClassifiedGeneratedTextStreamResult {
	return types.ClassifiedGeneratedTextStreamResult{
		GeneratedText:       strPtr(f.Text),
		FinishReason:        f.StopReason,
		GeneratedTokenCount: f.GeneratedTokenCount,
		Seed:                f.Seed,
		InputTokenCount:     f.InputTokenCount,
		Tokens:              f.Tokens,
		InputTokens:         f.InputTokens,
	}
}

func strPtr(s string) *string { return &s }

// Generate performs a unary generation call.
func (c *Client) Generate(ctx context.Context, req Request, headers map[string]string) (*types.ClassifiedGeneratedTextResult, error) {
	var resp batchedResponse
	_, err := c.client.PostJSON(ctx, generateEndpoint, wireRequest{
		ModelID: req.ModelID,
		Inputs:  req.Inputs,
		Params:  req.Params,
	}, &resp, headers)
	if err != nil {
		return nil, toClientError(err)
	}
	if len(resp.Responses) == 0 {
		return nil, clienterrors.Http(http.StatusInternalServerError, "generation backend returned no responses")
	}
	result := resp.Responses[0].toResult()
	return &result, nil
}

// GenerateStream performs a streaming generation call, emitting one
// ClassifiedGeneratedTextStreamResult per upstream frame. Both returned
// channels close when the stream ends; the error channel receives at
// most one value.
func (c *Client) GenerateStream(ctx context.Context, req Request, headers map[string]string) (<-chan types.ClassifiedGeneratedTextStreamResult, <-chan error) {
	out := make(chan types.ClassifiedGeneratedTextStreamResult)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		httpResp, err := c.client.DoStream(ctx, httpclient.Request{
			Method:  http.MethodPost,
			Path:    generateStreamEndpoint,
			Headers: headers,
			Body: wireRequest{
				ModelID: req.ModelID,
				Inputs:  req.Inputs,
				Params:  req.Params,
			},
		})
		if err != nil {
			errs <- toClientError(err)
			return
		}
		defer httpResp.Body.Close()

		parser := sseio.NewParser(httpResp.Body)
		for {
			event, err := parser.Next()
			if err != nil {
				if parser.Err() != nil {
					errs <- clienterrors.Http(http.StatusInternalServerError, err.Error())
				}
				return
			}

			var f frame
			if err := json.Unmarshal([]byte(event.Data), &f); err != nil {
				errs <- clienterrors.Http(http.StatusInternalServerError, err.Error())
				return
			}

			select {
			case out <- f.toStreamResult():
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

// TokenizeResult is the response to a tokenize call.
type TokenizeResult struct {
	TokenCount int                    `json:"token_count"`
	Tokens     []types.GeneratedToken `json:"tokens,omitempty"`
}

// Tokenize counts (and optionally lists) the tokens inputs would
// produce for modelID.
func (c *Client) Tokenize(ctx context.Context, modelID, inputs string, headers map[string]string) (*TokenizeResult, error) {
	var result TokenizeResult
	_, err := c.client.PostJSON(ctx, tokenizeEndpoint, map[string]string{
		"model_id": modelID,
		"inputs":   inputs,
	}, &result, headers)
	if err != nil {
		return nil, toClientError(err)
	}
	return &result, nil
}

func toClientError(err error) error {
	if statusErr, ok := err.(*httpclient.StatusError); ok {
		message := "unknown error occurred"
		var gerr generationError
		if jsonErr := json.Unmarshal(statusErr.Body, &gerr); jsonErr == nil && gerr.Message != "" {
			message = gerr.Message
		}
		return clienterrors.Http(statusErr.StatusCode, message)
	}
	return clienterrors.Http(http.StatusInternalServerError, err.Error())
}
