package streaming

import (
	"context"
	"sync"
)

// DetectionBatchStream combines N per-detector DetectionStreams into a
// single in-order BatchFrame stream via a Batcher. With exactly one
// stream it degenerates to a direct forward, skipping the batcher
// entirely (spec.md §4.5 Stage D).
func DetectionBatchStream(ctx context.Context, detectorIDs []string, streams []<-chan DetectionFrame) <-chan BatchFrame {
	out := make(chan BatchFrame, channelCapacity)

	if len(streams) == 1 {
		go func() {
			defer close(out)
			for frame := range streams[0] {
				bf := BatchFrame{Chunk: frame.Chunk, Detections: frame.Detections, Err: frame.Err}
				select {
				case out <- bf:
				case <-ctx.Done():
					return
				}
				if frame.Err != nil {
					return
				}
			}
		}()
		return out
	}

	merged := make(chan DetectionFrame, channelCapacity)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(len(streams))
	for _, s := range streams {
		go func(s <-chan DetectionFrame) {
			defer wg.Done()
			for frame := range s {
				select {
				case merged <- frame:
				case <-done:
					return
				}
			}
		}(s)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	go func() {
		defer close(out)
		defer close(done)

		batcher := NewMaxProcessedIndexBatcher(detectorIDs)

		emit := func(frames []BatchFrame) bool {
			for _, bf := range frames {
				select {
				case out <- bf:
				case <-ctx.Done():
					return false
				}
				if bf.Err != nil {
					return false
				}
			}
			return true
		}

		for frame := range merged {
			if !emit(batcher.Advance(frame)) {
				return
			}
		}
		emit(batcher.Flush())
	}()

	return out
}
