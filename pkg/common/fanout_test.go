package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guardrails/orchestrator/pkg/types"
)

func TestEffectiveThreshold(t *testing.T) {
	t.Run("params override default", func(t *testing.T) {
		params := types.DetectorParams{"threshold": 0.9}
		got := EffectiveThreshold(params, 0.5)
		assert.Equal(t, 0.9, got)
	})

	t.Run("falls back to detector default", func(t *testing.T) {
		params := types.DetectorParams{"lang": "en"}
		got := EffectiveThreshold(params, 0.5)
		assert.Equal(t, 0.5, got)
	})

	t.Run("nil params falls back to default", func(t *testing.T) {
		got := EffectiveThreshold(nil, 0.5)
		assert.Equal(t, 0.5, got)
	})

	t.Run("does not mutate caller's params", func(t *testing.T) {
		params := types.DetectorParams{"threshold": 0.9}
		EffectiveThreshold(params, 0.5)
		_, stillPresent := params["threshold"]
		assert.True(t, stillPresent)
	})
}

func TestSplitThreshold(t *testing.T) {
	t.Run("strips threshold from the forwarded params", func(t *testing.T) {
		params := types.DetectorParams{"threshold": 0.9, "lang": "en"}
		clientParams, threshold := SplitThreshold(params, 0.5)

		assert.Equal(t, 0.9, threshold)
		assert.Equal(t, types.DetectorParams{"lang": "en"}, clientParams)
		_, stillThere := params["threshold"]
		assert.True(t, stillThere, "caller's original params must be untouched")
	})

	t.Run("no threshold key forwards params unchanged and uses the default", func(t *testing.T) {
		params := types.DetectorParams{"lang": "en"}
		clientParams, threshold := SplitThreshold(params, 0.5)

		assert.Equal(t, 0.5, threshold)
		assert.Equal(t, types.DetectorParams{"lang": "en"}, clientParams)
	})

	t.Run("nil params", func(t *testing.T) {
		clientParams, threshold := SplitThreshold(nil, 0.5)
		assert.Equal(t, 0.5, threshold)
		assert.Empty(t, clientParams)
	})
}
