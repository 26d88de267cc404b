package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/handlers"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

const (
	prompt        = "In 2014, what was the average height of men who were born in 1996?"
	detectorID    = "answer_relevance"
	relevanceType = "relevance"
	isRelevant    = "is_relevant"
)

// newDetectionOnGenerationContext builds an orchestrator.Context with a
// single TextGeneration detector pointed at a mock HTTP server that
// always returns the given score.
func newDetectionOnGenerationContext(t *testing.T, server *httptest.Server, threshold float64) *orchestrator.Context {
	t.Helper()

	cfg := &config.Config{
		Detectors: map[string]config.DetectorConfig{
			detectorID: {
				Type:             config.DetectorTypeTextGeneration,
				ChunkerID:        "whole_doc",
				DefaultThreshold: threshold,
			},
		},
		Chunkers: map[string]config.ChunkerConfig{
			"whole_doc": {},
		},
	}
	require.NoError(t, cfg.Validate())

	registry := orchestrator.NewClientRegistry()
	octx := orchestrator.NewContext(cfg, registry)
	octx.RegisterDetector(detectorID, detector.NewTextGenerationClient(httpclient.Config{BaseURL: server.URL}))
	return octx
}

func mockDetectorServer(t *testing.T, score float64, detectionType, detection string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, detectorID, r.Header.Get("detector-id"))
		assert.Equal(t, detectorID, r.Header.Get("x-model-name"))

		results := []types.DetectionResult{{
			Index: 0,
			Results: []types.Detection{{
				Type:      detectionType,
				Detection: detection,
				Score:     score,
			}},
		}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}))
}

func mockDetectorErrorServer(t *testing.T, code int, message string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message})
	}))
}

// S1: score below threshold produces an empty detections list.
func TestDetectionOnGenerationNoDetections(t *testing.T) {
	server := mockDetectorServer(t, 0.49, relevanceType, isRelevant)
	defer server.Close()
	octx := newDetectionOnGenerationContext(t, server, 0.5)

	result, err := handlers.DetectionOnGeneration(t.Context(), octx, orchestrator.DetectionOnGenerationTask{
		TraceID:       "t1",
		Prompt:        prompt,
		GeneratedText: "The average height of women is 159cm (or 5'3'').",
		Detectors:     map[string]types.DetectorParams{detectorID: {}},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Detections)
}

// S2: score above threshold surfaces exactly one tagged detection.
func TestDetectionOnGenerationSurfacesDetection(t *testing.T) {
	server := mockDetectorServer(t, 0.89, relevanceType, isRelevant)
	defer server.Close()
	octx := newDetectionOnGenerationContext(t, server, 0.5)

	result, err := handlers.DetectionOnGeneration(t.Context(), octx, orchestrator.DetectionOnGenerationTask{
		TraceID:       "t2",
		Prompt:        prompt,
		GeneratedText: "The average height of men who were born in 1996 was 171cm (or 5'7.5'') in 2014.",
		Detectors:     map[string]types.DetectorParams{detectorID: {}},
	})

	require.NoError(t, err)
	require.Len(t, result.Detections, 1)
	d := result.Detections[0]
	assert.Equal(t, relevanceType, d.Type)
	assert.Equal(t, isRelevant, d.Detection)
	assert.Equal(t, detectorID, *d.DetectorID)
	assert.Equal(t, 0.89, d.Score)
}

// S3: a detector-side failure propagates as an orcherrors.Error mapping
// to 500.
func TestDetectionOnGenerationDetectorError(t *testing.T) {
	server := mockDetectorErrorServer(t, 500, "The detector is overloaded.")
	defer server.Close()
	octx := newDetectionOnGenerationContext(t, server, 0.5)

	_, err := handlers.DetectionOnGeneration(t.Context(), octx, orchestrator.DetectionOnGenerationTask{
		TraceID:       "t3",
		Prompt:        prompt,
		GeneratedText: "anything",
		Detectors:     map[string]types.DetectorParams{detectorID: {}},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, orcherrors.StatusCode(err))
}

// S5: empty detectors map is rejected with a validation error.
func TestDetectionOnGenerationEmptyDetectors(t *testing.T) {
	unusedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("detector should not be called when `detectors` is empty")
	}))
	defer unusedServer.Close()
	octx := newDetectionOnGenerationContext(t, unusedServer, 0.5)

	_, err := handlers.DetectionOnGeneration(t.Context(), octx, orchestrator.DetectionOnGenerationTask{
		TraceID:   "t5",
		Prompt:    prompt,
		Detectors: map[string]types.DetectorParams{},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, orcherrors.StatusCode(err))
}

// S6: a detector of the wrong category for this endpoint is rejected.
func TestDetectionOnGenerationWrongCategoryDetector(t *testing.T) {
	cfg := &config.Config{
		Detectors: map[string]config.DetectorConfig{
			"fact_checking_sentence": {
				Type:             config.DetectorTypeTextContents,
				ChunkerID:        "sentence",
				DefaultThreshold: 0.5,
			},
		},
		Chunkers: map[string]config.ChunkerConfig{"sentence": {}},
	}
	require.NoError(t, cfg.Validate())
	octx := orchestrator.NewContext(cfg, orchestrator.NewClientRegistry())

	_, err := handlers.DetectionOnGeneration(t.Context(), octx, orchestrator.DetectionOnGenerationTask{
		TraceID:       "t6",
		Prompt:        prompt,
		GeneratedText: "anything",
		Detectors:     map[string]types.DetectorParams{"fact_checking_sentence": {}},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, orcherrors.StatusCode(err))
	assert.Contains(t, err.Error(), "not supported by this endpoint")
}
