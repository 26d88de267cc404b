// Package types holds the wire-level data model shared by clients,
// common fan-out helpers, the streaming pipeline, and handlers.
package types

// Chunk is one detector-sized unit produced by a chunker, either over a
// single text or over a run of generation frames.
//
// InputStartIndex/InputEndIndex reference positions in the upstream
// generation-frame sequence (inclusive); Start/End are byte offsets into
// the concatenated source text of that range. A Chunk is immutable once
// produced.
type Chunk struct {
	InputStartIndex int
	InputEndIndex   int
	Start           int
	End             int
	Text            string
}
