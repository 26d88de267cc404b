package streaming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionBatchStreamSingleStreamForwardsDirectly(t *testing.T) {
	in := make(chan DetectionFrame, 2)
	in <- chunkFrame("det-a", 0, 0)
	in <- chunkFrame("det-a", 1, 1)
	close(in)

	var streams []<-chan DetectionFrame
	streams = append(streams, in)

	out := DetectionBatchStream(context.Background(), []string{"det-a"}, streams)

	var got []int
	for bf := range out {
		got = append(got, bf.Chunk.InputStartIndex)
	}
	assert.Equal(t, []int{0, 1}, got)
}

func TestDetectionBatchStreamAlignsMultipleDetectors(t *testing.T) {
	a := make(chan DetectionFrame, 2)
	b := make(chan DetectionFrame, 2)
	a <- chunkFrame("det-a", 0, 0)
	a <- chunkFrame("det-a", 1, 1)
	close(a)
	b <- chunkFrame("det-b", 0, 0)
	b <- chunkFrame("det-b", 1, 1)
	close(b)

	streams := []<-chan DetectionFrame{a, b}
	out := DetectionBatchStream(context.Background(), []string{"det-a", "det-b"}, streams)

	var got []int
	for bf := range out {
		got = append(got, bf.Chunk.InputStartIndex)
	}
	require.Len(t, got, 2)
	assert.Equal(t, []int{0, 1}, got, "chunks must emit in non-decreasing input_start_index order")
}

func TestDetectionBatchStreamStopsOnError(t *testing.T) {
	a := make(chan DetectionFrame, 2)
	a <- DetectionFrame{DetectorID: "det-a", Err: errBoom}
	close(a)

	streams := []<-chan DetectionFrame{a}
	out := DetectionBatchStream(context.Background(), []string{"det-a"}, streams)

	bf := <-out
	require.Error(t, bf.Err)

	_, more := <-out
	assert.False(t, more)
}
