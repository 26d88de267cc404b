// Package detector implements the four detector client shapes: text
// contents, text chat, text context document, and text generation.
// Each wraps an httpclient.Client pointed at one configured detector
// service and shares a common request envelope via handle.
package detector

import (
	"context"
	"encoding/json"
	"net/http"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
)

// base is embedded by every detector client variant. It owns the
// transport and the shared header/error-handling behavior; each variant
// only adds its endpoint path and request/response shape.
type base struct {
	client *httpclient.Client
}

func newBase(cfg httpclient.Config) base {
	return base{client: httpclient.NewClient(cfg)}
}

// detectorError is the error body a detector returns on failure.
type detectorError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handle posts request to path, attaching the headers every detector
// endpoint requires, and decodes into result. On a non-2xx response it
// falls back to "unknown error occurred" when the body isn't a
// recognizable detector error.
func handle[S any](ctx context.Context, b base, modelID, path string, request interface{}, headers map[string]string, result *S) error {
	hdrs := map[string]string{
		"detector-id":  modelID,
		"x-model-name": modelID,
	}
	for k, v := range headers {
		hdrs[k] = v
	}

	resp, err := b.client.PostJSON(ctx, path, request, result, hdrs)
	if err != nil {
		var statusErr *httpclient.StatusError
		if ok := asStatusError(err, &statusErr); ok {
			message := "unknown error occurred"
			var derr detectorError
			if jsonErr := json.Unmarshal(statusErr.Body, &derr); jsonErr == nil && derr.Message != "" {
				message = derr.Message
			}
			return clienterrors.Http(statusErr.StatusCode, message)
		}
		return clienterrors.Http(http.StatusInternalServerError, err.Error())
	}
	_ = resp
	return nil
}

func asStatusError(err error, target **httpclient.StatusError) bool {
	se, ok := err.(*httpclient.StatusError)
	if !ok {
		return false
	}
	*target = se
	return true
}
