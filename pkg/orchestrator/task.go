package orchestrator

import "github.com/guardrails/orchestrator/pkg/types"

// ClassificationWithGenTask is the unary classification-with-generation
// task: apply input/output detection around a single generation call.
type ClassificationWithGenTask struct {
	TraceID          string
	ModelID          string
	Inputs           string
	GuardrailsConfig types.GuardrailsConfig
	TextGenParams    types.GenerationParams
	Headers          map[string]string
}

// StreamingClassificationWithGenTask is the streaming counterpart of
// ClassificationWithGenTask.
type StreamingClassificationWithGenTask struct {
	TraceID          string
	ModelID          string
	Inputs           string
	GuardrailsConfig types.GuardrailsConfig
	TextGenParams    types.GenerationParams
	Headers          map[string]string
}

// ChatCompletionsDetectionTask wraps a chat-completions request with
// detector configuration. Streaming requests are accepted but always
// fail with NotImplemented (see SPEC_FULL.md's Supplemented Features).
type ChatCompletionsDetectionTask struct {
	TraceID          string
	Model            string
	Messages         []types.ChatMessageInternal
	Tools            []types.Tool
	Stream           bool
	GuardrailsConfig types.GuardrailsConfig
	TextGenParams    types.GenerationParams
	Headers          map[string]string
}

// DetectionOnGenerationTask runs detection on an already-produced
// prompt/generated-text pair; no generation backend is invoked.
type DetectionOnGenerationTask struct {
	TraceID       string
	Prompt        string
	GeneratedText string
	Detectors     map[string]types.DetectorParams
	Headers       map[string]string
}

// DetectionOnPromptTask runs detection directly on a prompt; no
// generation backend is invoked. Detectors configured as TextContents
// run via the text_contents_detections primitive; detectors configured
// as TextContextDoc use Context/ContextType and run via
// context_detections. All detectors named in a single request must be
// of the same category.
type DetectionOnPromptTask struct {
	TraceID     string
	Inputs      string
	Context     []string
	ContextType string
	Detectors   map[string]types.DetectorParams
	Headers     map[string]string
}
