package streaming

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/chunker"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/types"
)

// ChunkerStream consumes InputFrame values and emits Chunk values
// covering a cross-frame input_start_index..input_end_index range and
// byte offsets into the concatenated generated text. Chunks are only
// emitted once their underlying frames are known-complete: the stream
// re-chunks the confirmed-complete prefix on every new frame, holding
// back the boundary the newest frame might still extend, and flushes
// the remainder when input closes.
func ChunkerStream(ctx context.Context, client *chunker.Client, chunkerID string, headers map[string]string, input <-chan InputFrame) (<-chan types.Chunk, <-chan error) {
	out := make(chan types.Chunk, channelCapacity)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		var texts []string
		var prefixLen []int
		lastEmittedEnd := 0

		frameForOffset := func(offset int) int {
			for i := len(prefixLen) - 1; i >= 0; i-- {
				if offset >= prefixLen[i] {
					return i
				}
			}
			return 0
		}

		emit := func(confirmedText string, confirmedFrames int, final bool) bool {
			if confirmedText == "" {
				return true
			}
			chunks, err := client.Chunk(ctx, chunkerID, confirmedText, headers)
			if err != nil {
				errs <- orcherrors.ChunkerRequestFailed(chunkerID, err)
				return false
			}
			if !final && len(chunks) > 0 {
				// The last chunk ends where the newest frame's text begins,
				// so that frame can still extend it.
				chunks = chunks[:len(chunks)-1]
			}
			for _, ch := range chunks {
				if ch.End <= lastEmittedEnd {
					continue
				}
				startFrame := frameForOffset(ch.Start)
				endFrame := frameForOffset(maxInt(ch.End-1, ch.Start))
				if endFrame >= confirmedFrames {
					endFrame = confirmedFrames - 1
				}
				cr := types.Chunk{InputStartIndex: startFrame, InputEndIndex: endFrame, Start: ch.Start, End: ch.End, Text: ch.Text}
				select {
				case out <- cr:
				case <-ctx.Done():
					return false
				}
				lastEmittedEnd = ch.End
			}
			return true
		}

		for frame := range input {
			if frame.Err != nil {
				errs <- frame.Err
				return
			}

			// Chunk over every frame except the newest: its end boundary
			// may still move if more text for this index arrives later.
			confirmedFrames := len(texts)
			confirmedText := joinStrings(texts)

			texts = append(texts, frame.Text)
			prefixLen = append(prefixLen, len(confirmedText))

			if !emit(confirmedText, confirmedFrames, false) {
				return
			}
		}

		// Input closed: flush remaining text including the final frame.
		fullText := joinStrings(texts)
		emit(fullText, len(texts), true)
	}()

	return out, errs
}

func joinStrings(parts []string) string {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return string(buf)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
