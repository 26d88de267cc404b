package streaming

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardrails/orchestrator/pkg/clients/chunker"
	"github.com/guardrails/orchestrator/pkg/clients/httpclient"
)

// sentenceChunkerStub splits whatever text it receives on ". " so the
// test can verify chunk offsets and cross-frame input index ranges
// without a real chunker model.
func sentenceChunkerStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type frame struct {
			Start int    `json:"start"`
			End   int    `json:"end"`
			Text  string `json:"text"`
		}
		var frames []frame
		pos := 0
		for pos < len(req.Text) {
			idx := indexFrom(req.Text, ". ", pos)
			end := idx + 2
			if idx < 0 {
				end = len(req.Text)
			}
			frames = append(frames, frame{Start: pos, End: end, Text: req.Text[pos:end]})
			pos = end
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(frames))
	}))
}

func indexFrom(s, sep string, from int) int {
	if from > len(s) {
		return -1
	}
	i := indexOf(s[from:], sep)
	if i < 0 {
		return -1
	}
	return i + from
}

func indexOf(s, sep string) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}

func TestChunkerStreamEmitsCompleteSentencesOnly(t *testing.T) {
	server := sentenceChunkerStub(t)
	defer server.Close()

	client := chunker.New(httpclient.Config{BaseURL: server.URL})

	input := make(chan InputFrame, 3)
	input <- InputFrame{Index: 0, Text: "First sentence. "}
	input <- InputFrame{Index: 1, Text: "Second sentence."}
	close(input)

	out, errs := ChunkerStream(context.Background(), client, "chunker-a", nil, input)

	var chunks []string
	for c := range out {
		chunks = append(chunks, c.Text)
	}
	require.NoError(t, drainErr(errs))
	require.Len(t, chunks, 2)
	assert.Equal(t, "First sentence. ", chunks[0])
	assert.Equal(t, "Second sentence.", chunks[1])
}

func drainErr(errs <-chan error) error {
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
