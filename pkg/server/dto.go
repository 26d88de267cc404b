// Package server binds the task dispatch in pkg/handlers to an HTTP
// surface using gin, the teacher's default example server framework
// (examples/gin-server). Request/response shapes mirror spec.md §6/§8.
package server

import (
	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

// guardrailsRequest is the wire shape of a classification-with-gen
// (unary or streaming) request.
type guardrailsRequest struct {
	ModelID          string                     `json:"model_id" binding:"required"`
	Inputs           string                     `json:"inputs" binding:"required"`
	GuardrailsConfig types.GuardrailsConfig     `json:"guardrail_config"`
	TextGenParams    types.GenerationParams     `json:"text_gen_parameters"`
}

type chatMessage struct {
	Role    types.Role    `json:"role" binding:"required"`
	Content *types.Content `json:"content"`
	Refusal *string       `json:"refusal"`
}

type chatCompletionsRequest struct {
	Model     string                     `json:"model" binding:"required"`
	Messages  []chatMessage              `json:"messages" binding:"required"`
	Tools     []types.Tool               `json:"tools"`
	Stream    bool                       `json:"stream"`
	Detectors *detectorsConfig           `json:"detectors"`
}

type detectorsConfig struct {
	Input  map[string]types.DetectorParams `json:"input"`
	Output map[string]types.DetectorParams `json:"output"`
}

func (d *detectorsConfig) toGuardrailsConfig() types.GuardrailsConfig {
	var cfg types.GuardrailsConfig
	if d == nil {
		return cfg
	}
	if len(d.Input) > 0 {
		cfg.Input = &types.GuardrailsConfigInput{Models: d.Input}
	}
	if len(d.Output) > 0 {
		cfg.Output = &types.GuardrailsConfigOutput{Models: d.Output}
	}
	return cfg
}

func chatMessagesToInternal(messages []chatMessage) []types.ChatMessageInternal {
	out := make([]types.ChatMessageInternal, len(messages))
	for i, m := range messages {
		out[i] = types.ChatMessageInternal{
			MessageIndex: i,
			Role:         m.Role,
			Content:      m.Content,
			Refusal:      m.Refusal,
		}
	}
	return out
}

// detectionOnGenerationRequest is the wire shape for the
// DetectionOnGeneration endpoint.
type detectionOnGenerationRequest struct {
	Prompt        string                          `json:"prompt" binding:"required"`
	GeneratedText string                          `json:"generated_text" binding:"required"`
	Detectors     map[string]types.DetectorParams `json:"detectors"`
}

// detectionOnPromptRequest is the wire shape for the DetectionOnPrompt
// endpoint; Context/ContextType are only meaningful when the named
// detectors are configured as TextContextDoc.
type detectionOnPromptRequest struct {
	Inputs      string                          `json:"inputs" binding:"required"`
	Context     []string                        `json:"context"`
	ContextType detector.ContextType            `json:"context_type"`
	Detectors   map[string]types.DetectorParams `json:"detectors"`
}

func toGuardrailsTask(traceID string, req guardrailsRequest, headers map[string]string) orchestrator.ClassificationWithGenTask {
	return orchestrator.ClassificationWithGenTask{
		TraceID:          traceID,
		ModelID:          req.ModelID,
		Inputs:           req.Inputs,
		GuardrailsConfig: req.GuardrailsConfig,
		TextGenParams:    req.TextGenParams,
		Headers:          headers,
	}
}

func toStreamingGuardrailsTask(traceID string, req guardrailsRequest, headers map[string]string) orchestrator.StreamingClassificationWithGenTask {
	return orchestrator.StreamingClassificationWithGenTask{
		TraceID:          traceID,
		ModelID:          req.ModelID,
		Inputs:           req.Inputs,
		GuardrailsConfig: req.GuardrailsConfig,
		TextGenParams:    req.TextGenParams,
		Headers:          headers,
	}
}
