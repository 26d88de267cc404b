package streaming

import "github.com/guardrails/orchestrator/pkg/types"

// Batcher aligns chunks arriving from N per-detector DetectionStreams
// into merged (chunk, detections) emissions. Advance is called once per
// incoming DetectionFrame from any stream; it returns the frames now
// safe to emit, in input_start_index order.
//
// This is a behaviour, not a class hierarchy: MaxProcessedIndexBatcher
// is the only implementation of this interface, and DetectionBatchStream
// constructs it directly.
type Batcher interface {
	Advance(frame DetectionFrame) []BatchFrame
	Flush() []BatchFrame
}

// pendingChunk accumulates detections for one chunk across detectors as
// they each produce for it.
type pendingChunk struct {
	chunk      types.Chunk
	detections []types.Detection
	seen       map[string]bool
}

// chunkKey identifies a single chunk by its full position, not just its
// InputStartIndex: one generation frame's byte range can contain more
// than one chunk boundary (e.g. a frame "A. B." chunked into "A." and
// " B.", both mapping to the same InputStartIndex via frameForOffset),
// so InputStartIndex alone is not a unique chunk identity.
type chunkKey struct {
	inputStartIndex int
	start           int
	end             int
}

func keyOf(ch types.Chunk) chunkKey {
	return chunkKey{inputStartIndex: ch.InputStartIndex, start: ch.Start, end: ch.End}
}

// MaxProcessedIndexBatcher is the default Batcher (spec.md §4.5 Stage D):
// it tracks, per detector, the highest input_end_index observed, and
// only emits a chunk once every detector's high-water mark has passed
// it.
type MaxProcessedIndexBatcher struct {
	detectorIDs []string
	highWater   map[string]int
	errored     map[string]bool
	pending     map[chunkKey]*pendingChunk
	order       []chunkKey // arrival order, matching chunk stream order
	emitted     map[chunkKey]bool
}

// NewMaxProcessedIndexBatcher builds a batcher for the given set of
// detector IDs, one DetectionStream each.
func NewMaxProcessedIndexBatcher(detectorIDs []string) *MaxProcessedIndexBatcher {
	highWater := make(map[string]int, len(detectorIDs))
	for _, id := range detectorIDs {
		highWater[id] = -1
	}
	return &MaxProcessedIndexBatcher{
		detectorIDs: detectorIDs,
		highWater:   highWater,
		errored:     make(map[string]bool),
		pending:     make(map[chunkKey]*pendingChunk),
		emitted:     make(map[chunkKey]bool),
	}
}

// completedIndex is the minimum high-water mark across detectors that
// have not errored. A detector that errored no longer blocks progress:
// its absence is reflected by removing it from consideration.
func (b *MaxProcessedIndexBatcher) completedIndex() (int, bool) {
	first := true
	min := 0
	for _, id := range b.detectorIDs {
		if b.errored[id] {
			continue
		}
		hw := b.highWater[id]
		if first || hw < min {
			min = hw
			first = false
		}
	}
	if first {
		return 0, false
	}
	return min, true
}

// Advance records frame and returns every pending chunk whose
// input_end_index is now covered by every still-live detector.
func (b *MaxProcessedIndexBatcher) Advance(frame DetectionFrame) []BatchFrame {
	if frame.Err != nil {
		b.errored[frame.DetectorID] = true
		return b.drain()
	}

	key := keyOf(frame.Chunk)
	pc, ok := b.pending[key]
	if !ok {
		pc = &pendingChunk{chunk: frame.Chunk, seen: make(map[string]bool)}
		b.pending[key] = pc
		b.order = append(b.order, key)
	}
	if !pc.seen[frame.DetectorID] {
		pc.seen[frame.DetectorID] = true
		pc.detections = append(pc.detections, frame.Detections...)
	}

	if frame.Chunk.InputEndIndex > b.highWater[frame.DetectorID] {
		b.highWater[frame.DetectorID] = frame.Chunk.InputEndIndex
	}

	return b.drain()
}

// Flush emits every remaining pending chunk, used once every upstream
// DetectionStream has closed.
func (b *MaxProcessedIndexBatcher) Flush() []BatchFrame {
	var out []BatchFrame
	for _, key := range b.order {
		if b.emitted[key] {
			continue
		}
		pc := b.pending[key]
		out = append(out, b.finalize(pc))
		b.emitted[key] = true
	}
	return out
}

func (b *MaxProcessedIndexBatcher) drain() []BatchFrame {
	completed, ok := b.completedIndex()
	if !ok {
		return nil
	}

	var out []BatchFrame
	for _, key := range b.order {
		if b.emitted[key] {
			continue
		}
		pc := b.pending[key]
		if pc.chunk.InputEndIndex > completed {
			break
		}
		out = append(out, b.finalize(pc))
		b.emitted[key] = true
	}
	return out
}

func (b *MaxProcessedIndexBatcher) finalize(pc *pendingChunk) BatchFrame {
	types.SortDetectionsByStart(pc.detections)
	return BatchFrame{Chunk: pc.chunk, Detections: pc.detections}
}
