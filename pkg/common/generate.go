package common

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/generation"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/types"
)

// Generate performs a unary generation call, wrapping transport failures
// as GenerateRequestFailed.
func Generate(ctx context.Context, client *generation.Client, headers map[string]string, modelID, inputs string, params types.GenerationParams) (*types.ClassifiedGeneratedTextResult, error) {
	result, err := client.Generate(ctx, generation.Request{ModelID: modelID, Inputs: inputs, Params: params}, headers)
	if err != nil {
		return nil, orcherrors.GenerateRequestFailed(modelID, err)
	}
	return result, nil
}

// GenerateStream opens a streaming generation call. Any error the stream
// reports, whether before the first frame or while decoding a later one,
// is wrapped as GenerateRequestFailed on the returned error channel.
func GenerateStream(ctx context.Context, client *generation.Client, headers map[string]string, modelID, inputs string, params types.GenerationParams) (<-chan types.ClassifiedGeneratedTextStreamResult, <-chan error) {
	frames, errs := client.GenerateStream(ctx, generation.Request{ModelID: modelID, Inputs: inputs, Params: params}, headers)
	wrapped := make(chan error, 1)
	go func() {
		defer close(wrapped)
		if err, ok := <-errs; ok {
			wrapped <- orcherrors.GenerateRequestFailed(modelID, err)
		}
	}()
	return frames, wrapped
}

// Tokenize counts the tokens inputs would produce, wrapping transport
// failures as TokenizeRequestFailed.
func Tokenize(ctx context.Context, client *generation.Client, headers map[string]string, modelID, inputs string) (int, []types.GeneratedToken, error) {
	result, err := client.Tokenize(ctx, modelID, inputs, headers)
	if err != nil {
		return 0, nil, orcherrors.TokenizeRequestFailed(modelID, err)
	}
	return result.TokenCount, result.Tokens, nil
}
