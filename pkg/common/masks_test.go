package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guardrails/orchestrator/pkg/types"
)

func TestApplyMasksNoMasks(t *testing.T) {
	regions := ApplyMasks("hello world", nil)
	assert.Equal(t, []Region{{Offset: 0, Text: "hello world"}}, regions)
}

func TestApplyMasksSingleMask(t *testing.T) {
	regions := ApplyMasks("hello world", []types.Mask{{Start: 6, End: 11}})
	assert.Equal(t, []Region{{Offset: 6, Text: "world"}}, regions)
}

func TestApplyMasksMultipleMasks(t *testing.T) {
	regions := ApplyMasks("hello cruel world", []types.Mask{
		{Start: 0, End: 5},
		{Start: 12, End: 17},
	})
	assert.Equal(t, []Region{
		{Offset: 0, Text: "hello"},
		{Offset: 12, Text: "world"},
	}, regions)
}

func TestApplyMasksClampsOutOfBounds(t *testing.T) {
	regions := ApplyMasks("hi", []types.Mask{{Start: -5, End: 100}})
	assert.Equal(t, []Region{{Offset: 0, Text: "hi"}}, regions)
}

func TestApplyMasksDropsEmptyOrInvertedSpans(t *testing.T) {
	regions := ApplyMasks("hello", []types.Mask{
		{Start: 3, End: 3},
		{Start: 4, End: 1},
		{Start: 0, End: 2},
	})
	assert.Equal(t, []Region{{Offset: 0, Text: "he"}}, regions)
}
