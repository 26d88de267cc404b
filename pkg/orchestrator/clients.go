package orchestrator

import (
	"github.com/guardrails/orchestrator/pkg/clients/chunker"
	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/clients/generation"
	"github.com/guardrails/orchestrator/pkg/clients/openai"
)

// Clients are registered under fixed logical names: "generation" and
// "chat_generation" for the two generation routes, "chunker:<id>" for
// each configured chunker, and "detector:<id>" for each configured
// detector (the concrete client type depends on the detector's
// configured category).

func chunkerKey(chunkerID string) string { return "chunker:" + chunkerID }
func detectorKey(detectorID string) string { return "detector:" + detectorID }

// RegisterChunker adds a chunker client under its logical name.
func (c *Context) RegisterChunker(chunkerID string, client *chunker.Client) {
	c.Clients.Register(chunkerKey(chunkerID), client)
}

// RegisterDetector adds a detector client (any of the four category
// clients) under its logical name.
func (c *Context) RegisterDetector(detectorID string, client interface{}) {
	c.Clients.Register(detectorKey(detectorID), client)
}

// RegisterGeneration adds the generation route's client.
func (c *Context) RegisterGeneration(client *generation.Client) {
	c.Clients.Register("generation", client)
}

// RegisterChatGeneration adds the chat-completions route's client.
func (c *Context) RegisterChatGeneration(client *openai.Client) {
	c.Clients.Register("chat_generation", client)
}

// Chunker resolves the chunker client for chunkerID.
func (c *Context) Chunker(chunkerID string) (*chunker.Client, error) {
	return GetAs[*chunker.Client](c.Clients, chunkerKey(chunkerID))
}

// Generation resolves the single configured generation client.
func (c *Context) Generation() (*generation.Client, error) {
	return GetAs[*generation.Client](c.Clients, "generation")
}

// ChatGeneration resolves the single configured chat-completions client.
func (c *Context) ChatGeneration() (*openai.Client, error) {
	return GetAs[*openai.Client](c.Clients, "chat_generation")
}

// TextContentsDetector resolves a TextContents-category detector client.
func (c *Context) TextContentsDetector(detectorID string) (*detector.TextContentsClient, error) {
	return GetAs[*detector.TextContentsClient](c.Clients, detectorKey(detectorID))
}

// TextChatDetector resolves a TextChat-category detector client.
func (c *Context) TextChatDetector(detectorID string) (*detector.TextChatClient, error) {
	return GetAs[*detector.TextChatClient](c.Clients, detectorKey(detectorID))
}

// TextContextDocDetector resolves a TextContextDoc-category detector client.
func (c *Context) TextContextDocDetector(detectorID string) (*detector.TextContextDocClient, error) {
	return GetAs[*detector.TextContextDocClient](c.Clients, detectorKey(detectorID))
}

// TextGenerationDetector resolves a TextGeneration-category detector client.
func (c *Context) TextGenerationDetector(detectorID string) (*detector.TextGenerationClient, error) {
	return GetAs[*detector.TextGenerationClient](c.Clients, detectorKey(detectorID))
}
