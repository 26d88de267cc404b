// Package streaming implements the streaming detection pipeline: a DAG
// of bounded channels carrying generation frames through per-chunker
// chunking, per-detector detection, and a cross-detector batcher, down
// to a single in-order response stream.
package streaming

import "github.com/guardrails/orchestrator/pkg/types"

// channelCapacity bounds every stage's channel, providing backpressure:
// a slow consumer slows its producer rather than buffering unboundedly.
const channelCapacity = 128

// ChannelCapacity exposes channelCapacity to callers outside the
// package that need to size their own adjoining channels consistently.
func ChannelCapacity() int { return channelCapacity }

// InputFrame is one generated-text frame fed into the chunking stage,
// tagged with its position in the upstream generation-frame sequence.
type InputFrame struct {
	Index int
	Text  string
	Err   error
}

// DetectionFrame is one (chunk, detections) tuple produced by a single
// detector's detection stream, annotated with the detector that
// produced it.
type DetectionFrame struct {
	DetectorID string
	Chunk      types.Chunk
	Detections []types.Detection
	Err        error
}

// BatchFrame is a cross-detector-aligned (chunk, detections) tuple
// emitted by a Batcher once every detector has produced for that chunk.
type BatchFrame struct {
	Chunk      types.Chunk
	Detections []types.Detection
	Err        error
}
