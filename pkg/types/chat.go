package types

import "encoding/json"

// MarshalJSON renders text content as a plain JSON string and non-text
// content (never produced internally, but round-trippable) as null.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Text == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*c.Text)
}

// UnmarshalJSON accepts a plain JSON string as text content; any other
// shape is left non-text so downstream validation can reject it.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	c.Text = &s
	return nil
}

// Role is a chat message's author role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Content is a chat message's content. Only text content is eligible for
// detection (spec.md §4.3); Text is nil for any other content shape.
type Content struct {
	Text *string
}

// IsText reports whether this content is plain text.
func (c Content) IsText() bool {
	return c.Text != nil
}

// ChatMessageInternal is the orchestrator's internal representation of a
// chat message (request or response), prepared for chunking/detection.
type ChatMessageInternal struct {
	MessageIndex int
	Role         Role
	Content      *Content
	Refusal      *string
}

// ChatDetections is the detections attached to a chat-completions-detection
// response when either side of the conversation surfaces detections.
type ChatDetections struct {
	Input  []DetectionResult `json:"input"`
	Output []DetectionResult `json:"output"`
}

// Message is a chat message as sent to/from a detector's text/chat
// endpoint or a chat-completions generation backend.
type Message struct {
	Role    Role     `json:"role"`
	Content *Content `json:"content,omitempty"`
}

// Tool is an OpenAI-shaped tool definition, forwarded unmodified to
// TextChat detectors and chat generation backends.
type Tool struct {
	Type     string                 `json:"type"`
	Function map[string]interface{} `json:"function"`
}
