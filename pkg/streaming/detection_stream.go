package streaming

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/types"
)

// DetectionStream consumes Chunk values from a single chunker stream and
// calls detectorID's client per chunk, batching up to batchSize chunks
// per call. params is forwarded to the detector as-is and must already
// have threshold popped off (see common.SplitThreshold), matching the
// unary fan-out's contract (spec.md §4.4: "call the detector with
// params (minus threshold)"). Detections are filtered by threshold,
// offset-shifted, and tagged with detectorID. Chunks are forwarded in
// order.
func DetectionStream(ctx context.Context, client *detector.TextContentsClient, detectorID string, params types.DetectorParams, threshold float64, batchSize int, headers map[string]string, chunks <-chan types.Chunk) <-chan DetectionFrame {
	out := make(chan DetectionFrame, channelCapacity)

	if batchSize <= 0 {
		batchSize = 1
	}

	go func() {
		defer close(out)

		var pending []types.Chunk

		flush := func() bool {
			if len(pending) == 0 {
				return true
			}
			batch := pending
			pending = nil

			contents := make([]string, len(batch))
			for i, ch := range batch {
				contents[i] = ch.Text
			}

			resultsByContent, err := client.TextContents(ctx, detectorID, detector.TextContentsRequest{
				Contents:       contents,
				DetectorParams: params,
			}, headers)
			if err != nil {
				wrapped := orcherrors.DetectorRequestFailed(detectorID, err)
				select {
				case out <- DetectionFrame{DetectorID: detectorID, Err: wrapped}:
				case <-ctx.Done():
				}
				return false
			}

			for i, ch := range batch {
				var detections []types.Detection
				if i < len(resultsByContent) {
					for _, d := range resultsByContent[i] {
						if d.Score < threshold {
							continue
						}
						detections = append(detections, types.ShiftDetection(d, ch.Start, detectorID))
					}
				}
				select {
				case out <- DetectionFrame{DetectorID: detectorID, Chunk: ch, Detections: detections}:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for ch := range chunks {
			pending = append(pending, ch)
			if len(pending) >= batchSize {
				if !flush() {
					return
				}
			}
		}
		flush()
	}()

	return out
}
