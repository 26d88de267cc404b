package common_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrails/orchestrator/pkg/clients/chunker"
	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

func textContent(s string) *types.Content {
	c := &types.Content{}
	b, _ := json.Marshal(s)
	_ = c.UnmarshalJSON(b)
	return c
}

func TestFilterChatMessagesRejectsNonText(t *testing.T) {
	nonText := &types.Content{} // Text nil: not plain text

	_, err := common.FilterChatMessages([]types.ChatMessageInternal{
		{MessageIndex: 0, Content: textContent("hello")},
		{MessageIndex: 1, Content: nonText},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "message 1")
	assert.Contains(t, err.Error(), "only text content is supported")
}

func TestFilterChatMessagesAcceptsAllText(t *testing.T) {
	messages := []types.ChatMessageInternal{
		{MessageIndex: 0, Content: textContent("hello")},
		{MessageIndex: 1, Content: textContent("world")},
	}
	out, err := common.FilterChatMessages(messages)
	require.NoError(t, err)
	assert.Equal(t, messages, out)
}

// TestChatDetectionsOmitsMessagesWithoutDetections checks that only
// messages whose detections surface get a DetectionResult, indexed by
// their message index.
func TestChatDetectionsOmitsMessagesWithoutDetections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chunkers/chunk", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"start": 0, "end": len(body.Text), "text": body.Text}})
	})
	mux.HandleFunc("/api/v1/text/contents", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contents []string `json:"contents"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		// Message 1 always surfaces (flag word); message 0 never does.
		resp := make([][]types.Detection, len(body.Contents))
		for i, c := range body.Contents {
			if c == "flagged message one" {
				resp[i] = []types.Detection{{Type: "pii", Detection: "has_pii", Score: 0.9}}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := &config.Config{
		Detectors: map[string]config.DetectorConfig{
			"pii_detector": {Type: config.DetectorTypeTextContents, ChunkerID: "whole_doc", DefaultThreshold: 0.5},
		},
		Chunkers: map[string]config.ChunkerConfig{"whole_doc": {}},
	}
	require.NoError(t, cfg.Validate())

	octx := orchestrator.NewContext(cfg, orchestrator.NewClientRegistry())
	octx.RegisterChunker("whole_doc", chunker.New(httpclient.Config{BaseURL: server.URL}))
	octx.RegisterDetector("pii_detector", detector.NewTextContentsClient(httpclient.Config{BaseURL: server.URL}))

	messages := []types.ChatMessageInternal{
		{MessageIndex: 0, Content: textContent("clean message zero")},
		{MessageIndex: 1, Content: textContent("flagged message one")},
	}

	byChunker, err := common.ChunkChatMessages(t.Context(), octx, nil, []string{"whole_doc"}, messages)
	require.NoError(t, err)

	results, err := common.ChatDetections(t.Context(), octx, nil, map[string]types.DetectorParams{"pii_detector": {}}, byChunker)
	require.NoError(t, err)

	require.Len(t, results, 1, "message 0 never surfaces, so only message 1 should appear")
	assert.Equal(t, 1, results[0].Index)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "has_pii", results[0].Results[0].Detection)
}
