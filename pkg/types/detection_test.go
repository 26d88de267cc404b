package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(i int) *int { return &i }

func TestSortDetectionsByStart(t *testing.T) {
	tests := []struct {
		name   string
		input  []Detection
		wantAt []*int // expected Start values in order, after sort
	}{
		{
			name: "ascending by start",
			input: []Detection{
				{Start: ptr(10)},
				{Start: ptr(2)},
				{Start: ptr(5)},
			},
			wantAt: []*int{ptr(2), ptr(5), ptr(10)},
		},
		{
			name: "missing start sorts last",
			input: []Detection{
				{Start: ptr(3)},
				{Start: nil},
				{Start: ptr(1)},
			},
			wantAt: []*int{ptr(1), ptr(3), nil},
		},
		{
			name: "stable for equal starts",
			input: []Detection{
				{Start: ptr(1), Detection: "a"},
				{Start: ptr(1), Detection: "b"},
			},
			wantAt: []*int{ptr(1), ptr(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortDetectionsByStart(tt.input)
			for i, want := range tt.wantAt {
				if want == nil {
					assert.Nil(t, tt.input[i].Start)
				} else {
					if assert.NotNil(t, tt.input[i].Start) {
						assert.Equal(t, *want, *tt.input[i].Start)
					}
				}
			}
		})
	}

	t.Run("preserves insertion order for equal starts", func(t *testing.T) {
		input := []Detection{
			{Start: ptr(1), Detection: "a"},
			{Start: ptr(1), Detection: "b"},
		}
		SortDetectionsByStart(input)
		assert.Equal(t, "a", input[0].Detection)
		assert.Equal(t, "b", input[1].Detection)
	})
}

func TestShiftDetection(t *testing.T) {
	d := Detection{Start: ptr(5), End: ptr(10), Detection: "profanity"}

	shifted := ShiftDetection(d, 100, "my-detector")

	assert.Equal(t, 105, *shifted.Start)
	assert.Equal(t, 110, *shifted.End)
	assert.Equal(t, "my-detector", *shifted.DetectorID)
	// original untouched
	assert.Equal(t, 5, *d.Start)
	assert.Nil(t, d.DetectorID)
}

func TestShiftDetectionNilOffsets(t *testing.T) {
	d := Detection{Detection: "profanity"}

	shifted := ShiftDetection(d, 100, "my-detector")

	assert.Nil(t, shifted.Start)
	assert.Nil(t, shifted.End)
	assert.Equal(t, "my-detector", *shifted.DetectorID)
}
