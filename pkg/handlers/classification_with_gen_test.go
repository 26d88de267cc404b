package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrails/orchestrator/pkg/clients/chunker"
	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/clients/generation"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/handlers"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

// fakeBackend serves the generation, tokenize, chunker, and
// TextContents-detector endpoints needed to drive ClassificationWithGen
// end to end against a single httptest.Server, keyed by the detector's
// configured score.
type fakeBackend struct {
	t              *testing.T
	generatedText  string
	inputScore     float64
	outputScore    float64
	generateCalled bool
}

func (f *fakeBackend) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/task/generate", func(w http.ResponseWriter, r *http.Request) {
		f.generateCalled = true
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"responses": []map[string]interface{}{{
				"text":                  f.generatedText,
				"generated_token_count": 5,
				"input_token_count":     3,
			}},
		})
	})
	mux.HandleFunc("/api/v1/task/tokenize", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"token_count": 7})
	})
	mux.HandleFunc("/api/v1/chunkers/chunk", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{
			"start": 0, "end": len(body.Text), "text": body.Text,
		}})
	})
	mux.HandleFunc("/api/v1/text/contents", func(w http.ResponseWriter, r *http.Request) {
		score := f.outputScore
		if r.Header.Get("detector-id") == "input_detector" {
			score = f.inputScore
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([][]types.Detection{{{
			Type:      "pii",
			Detection: "has_pii",
			Score:     score,
		}}})
	})
	return mux
}

func newClassificationContext(t *testing.T, backend *fakeBackend, inputDetectorOn, outputDetectorOn bool) *orchestrator.Context {
	t.Helper()
	server := httptest.NewServer(backend.mux())
	t.Cleanup(server.Close)

	detectors := map[string]config.DetectorConfig{}
	if inputDetectorOn {
		detectors["input_detector"] = config.DetectorConfig{Type: config.DetectorTypeTextContents, ChunkerID: "whole_doc", DefaultThreshold: 0.5}
	}
	if outputDetectorOn {
		detectors["output_detector"] = config.DetectorConfig{Type: config.DetectorTypeTextContents, ChunkerID: "whole_doc", DefaultThreshold: 0.5}
	}

	cfg := &config.Config{
		Detectors: detectors,
		Chunkers:  map[string]config.ChunkerConfig{"whole_doc": {}},
	}
	require.NoError(t, cfg.Validate())

	octx := orchestrator.NewContext(cfg, orchestrator.NewClientRegistry())
	octx.RegisterGeneration(generation.New(httpclient.Config{BaseURL: server.URL}))
	octx.RegisterChunker("whole_doc", chunker.New(httpclient.Config{BaseURL: server.URL}))
	if inputDetectorOn {
		octx.RegisterDetector("input_detector", detector.NewTextContentsClient(httpclient.Config{BaseURL: server.URL}))
	}
	if outputDetectorOn {
		octx.RegisterDetector("output_detector", detector.NewTextContentsClient(httpclient.Config{BaseURL: server.URL}))
	}
	return octx
}

func TestClassificationWithGenShortCircuitsOnInputDetection(t *testing.T) {
	backend := &fakeBackend{t: t, generatedText: "should never be produced", inputScore: 0.9}
	octx := newClassificationContext(t, backend, true, false)

	result, err := handlers.ClassificationWithGen(t.Context(), octx, orchestrator.ClassificationWithGenTask{
		TraceID: "t1",
		ModelID: "model-a",
		Inputs:  "my social security number is 123-45-6789",
		GuardrailsConfig: types.GuardrailsConfig{
			Input: &types.GuardrailsConfigInput{Models: map[string]types.DetectorParams{"input_detector": {}}},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.UnsuitableInput, result.Warnings[0].ID)
	require.Len(t, result.TokenClassificationResults.Input, 1)
	assert.Equal(t, 7, result.InputTokenCount)
	assert.Nil(t, result.GeneratedText)
	assert.False(t, backend.generateCalled, "generation must not run once input detection surfaces")
}

func TestClassificationWithGenRunsGenerationWhenInputClean(t *testing.T) {
	backend := &fakeBackend{t: t, generatedText: "a clean response", inputScore: 0.1}
	octx := newClassificationContext(t, backend, true, false)

	result, err := handlers.ClassificationWithGen(t.Context(), octx, orchestrator.ClassificationWithGenTask{
		TraceID: "t2",
		ModelID: "model-a",
		Inputs:  "what's the weather like",
		GuardrailsConfig: types.GuardrailsConfig{
			Input: &types.GuardrailsConfigInput{Models: map[string]types.DetectorParams{"input_detector": {}}},
		},
	})

	require.NoError(t, err)
	assert.True(t, backend.generateCalled)
	require.NotNil(t, result.GeneratedText)
	assert.Equal(t, "a clean response", *result.GeneratedText)
	assert.Empty(t, result.Warnings)
}

func TestClassificationWithGenAnnotatesOutputDetections(t *testing.T) {
	backend := &fakeBackend{t: t, generatedText: "contains something flagged", outputScore: 0.95}
	octx := newClassificationContext(t, backend, false, true)

	result, err := handlers.ClassificationWithGen(t.Context(), octx, orchestrator.ClassificationWithGenTask{
		TraceID: "t3",
		ModelID: "model-a",
		Inputs:  "prompt",
		GuardrailsConfig: types.GuardrailsConfig{
			Output: &types.GuardrailsConfigOutput{Models: map[string]types.DetectorParams{"output_detector": {}}},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result.GeneratedText, "generation response is always returned, annotated rather than replaced")
	require.Len(t, result.TokenClassificationResults.Output, 1)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.UnsuitableOutput, result.Warnings[0].ID)
}
