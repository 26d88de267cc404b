package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorParamsPopThreshold(t *testing.T) {
	t.Run("present and numeric", func(t *testing.T) {
		p := DetectorParams{"threshold": 0.75, "other": "value"}
		threshold, ok := p.PopThreshold()
		assert.True(t, ok)
		assert.Equal(t, 0.75, threshold)
		_, stillPresent := p["threshold"]
		assert.False(t, stillPresent)
		assert.Equal(t, "value", p["other"])
	})

	t.Run("absent", func(t *testing.T) {
		p := DetectorParams{"other": "value"}
		_, ok := p.PopThreshold()
		assert.False(t, ok)
	})

	t.Run("nil map", func(t *testing.T) {
		var p DetectorParams
		_, ok := p.PopThreshold()
		assert.False(t, ok)
	})

	t.Run("non-numeric", func(t *testing.T) {
		p := DetectorParams{"threshold": "not-a-number"}
		_, ok := p.PopThreshold()
		assert.False(t, ok)
	})
}

func TestDetectorParamsClone(t *testing.T) {
	original := DetectorParams{"threshold": 0.5, "lang": "en"}
	clone := original.Clone()

	clone.PopThreshold()

	_, originalStillHasThreshold := original["threshold"]
	assert.True(t, originalStillHasThreshold, "popping on the clone must not mutate the original")
	_, cloneHasThreshold := clone["threshold"]
	assert.False(t, cloneHasThreshold)
}

func TestDetectorParamsCloneNil(t *testing.T) {
	var p DetectorParams
	clone := p.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}
