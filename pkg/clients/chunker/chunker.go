// Package chunker implements the ChunkerClient: a named endpoint,
// addressed by a chunker-id header, that splits text into detector-sized
// units. Both the unary and streaming forms return the same frame shape.
package chunker

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/types"
)

const (
	chunkerEndpoint       = "/api/v1/chunkers/chunk"
	chunkerStreamEndpoint = "/api/v1/chunkers/chunk-stream"
)

// Client calls one configured chunker service.
type Client struct {
	client *httpclient.Client
}

// New builds a chunker Client.
func New(cfg httpclient.Config) *Client {
	return &Client{client: httpclient.NewClient(cfg)}
}

// chunkerError is the error body a chunker returns on failure.
type chunkerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// frame is the wire shape for a single chunk, shared by the unary and
// streaming responses.
type frame struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Chunk runs the chunker over text and returns its chunks in order.
func (c *Client) Chunk(ctx context.Context, chunkerID, text string, headers map[string]string) ([]types.Chunk, error) {
	hdrs := map[string]string{"chunker-id": chunkerID}
	for k, v := range headers {
		hdrs[k] = v
	}

	var frames []frame
	resp, err := c.client.PostJSON(ctx, chunkerEndpoint, map[string]string{"text": text}, &frames, hdrs)
	if err != nil {
		return nil, toClientError(err)
	}
	_ = resp

	chunks := make([]types.Chunk, len(frames))
	for i, f := range frames {
		chunks[i] = types.Chunk{Start: f.Start, End: f.End, Text: f.Text}
	}
	return chunks, nil
}

// StreamChunk runs the streaming chunker over a channel of input text
// segments, emitting chunk frames as they form. The returned channel is
// closed when the upstream stream ends or the context is cancelled.
func (c *Client) StreamChunk(ctx context.Context, chunkerID string, input <-chan string, headers map[string]string) (<-chan types.Chunk, <-chan error) {
	out := make(chan types.Chunk)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		hdrs := map[string]string{"chunker-id": chunkerID}
		for k, v := range headers {
			hdrs[k] = v
		}

		pr, pw := io.Pipe()
		go streamNDJSON(pw, input)

		httpResp, err := c.client.DoStream(ctx, httpclient.Request{
			Method:  http.MethodPost,
			Path:    chunkerStreamEndpoint,
			Headers: hdrs,
			RawBody: pr,
		})
		if err != nil {
			errs <- toClientError(err)
			return
		}
		defer httpResp.Body.Close()

		scanner := bufio.NewScanner(httpResp.Body)
		for scanner.Scan() {
			var f frame
			if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
				errs <- clienterrors.Http(http.StatusInternalServerError, err.Error())
				return
			}
			select {
			case out <- types.Chunk{Start: f.Start, End: f.End, Text: f.Text}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- clienterrors.Http(http.StatusInternalServerError, err.Error())
		}
	}()

	return out, errs
}

// streamNDJSON encodes each input segment as a newline-delimited JSON
// object and writes it to pw, closing pw when input is exhausted.
func streamNDJSON(pw *io.PipeWriter, input <-chan string) {
	enc := json.NewEncoder(pw)
	for text := range input {
		if err := enc.Encode(map[string]string{"text": text}); err != nil {
			pw.CloseWithError(err)
			return
		}
	}
	pw.Close()
}

func toClientError(err error) error {
	if statusErr, ok := err.(*httpclient.StatusError); ok {
		message := "unknown error occurred"
		var cerr chunkerError
		if jsonErr := json.Unmarshal(statusErr.Body, &cerr); jsonErr == nil && cerr.Message != "" {
			message = cerr.Message
		}
		return clienterrors.Http(statusErr.StatusCode, message)
	}
	return clienterrors.Http(http.StatusInternalServerError, err.Error())
}
