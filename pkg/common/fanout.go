package common

import (
	"context"
	"sync"

	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

// EffectiveThreshold resolves the threshold a detection must meet to
// surface: the per-call params override, falling back to the
// detector's configured default.
func EffectiveThreshold(params types.DetectorParams, defaultThreshold float64) float64 {
	_, threshold := SplitThreshold(params, defaultThreshold)
	return threshold
}

// SplitThreshold clones params and pops the special "threshold" key off
// the clone so the clone is safe to forward to a detector: spec.md §3
// extracts threshold "before forwarding remaining params to the
// detector", and §4.4 calls the detector "with params (minus
// threshold)". It returns the params to forward and the effective
// threshold (the popped value, or defaultThreshold when absent).
func SplitThreshold(params types.DetectorParams, defaultThreshold float64) (types.DetectorParams, float64) {
	clientParams := params.Clone()
	if threshold, ok := clientParams.PopThreshold(); ok {
		return clientParams, threshold
	}
	return clientParams, defaultThreshold
}

// detectOneContent chunks text via the detector's configured chunker,
// calls the detector per chunk, and returns detections that meet the
// effective threshold, shifted by offset and tagged with detectorID.
func detectOneContent(ctx context.Context, octx *orchestrator.Context, headers map[string]string, detectorID string, params types.DetectorParams, offset int, text string) ([]types.Detection, error) {
	detectorCfg, ok := octx.Config.Detectors[detectorID]
	if !ok {
		return nil, orcherrors.DetectorNotFound(detectorID)
	}

	chunkerClient, err := octx.Chunker(detectorCfg.ChunkerID)
	if err != nil {
		return nil, orcherrors.ChunkerNotFound(detectorCfg.ChunkerID)
	}

	chunks, err := chunkerClient.Chunk(ctx, detectorCfg.ChunkerID, text, headers)
	if err != nil {
		return nil, orcherrors.ChunkerRequestFailed(detectorCfg.ChunkerID, err)
	}

	clientParams, threshold := SplitThreshold(params, detectorCfg.DefaultThreshold)

	client, err := octx.TextContentsDetector(detectorID)
	if err != nil {
		return nil, orcherrors.DetectorNotFound(detectorID)
	}

	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		contents[i] = ch.Text
	}

	resultsByContent, err := client.TextContents(ctx, detectorID, detector.TextContentsRequest{
		Contents:       contents,
		DetectorParams: clientParams,
	}, headers)
	if err != nil {
		return nil, orcherrors.DetectorRequestFailed(detectorID, err)
	}

	var out []types.Detection
	for i, chunkDetections := range resultsByContent {
		if i >= len(chunks) {
			break
		}
		chunkOffset := offset + chunks[i].Start
		for _, d := range chunkDetections {
			if d.Score < threshold {
				continue
			}
			out = append(out, types.ShiftDetection(d, chunkOffset, detectorID))
		}
	}
	return out, nil
}

// detectChunk runs a single TextContents chunk through client, filtering
// by threshold and shifting detections by the chunk's start offset.
// clientParams must already have threshold popped off (see
// SplitThreshold) since it is forwarded to the detector as-is.
func detectChunk(ctx context.Context, client *detector.TextContentsClient, detectorID string, clientParams types.DetectorParams, threshold float64, ch types.Chunk, headers map[string]string) ([]types.Detection, error) {
	resultsByContent, err := client.TextContents(ctx, detectorID, detector.TextContentsRequest{
		Contents:       []string{ch.Text},
		DetectorParams: clientParams,
	}, headers)
	if err != nil {
		return nil, orcherrors.DetectorRequestFailed(detectorID, err)
	}

	var out []types.Detection
	if len(resultsByContent) > 0 {
		for _, d := range resultsByContent[0] {
			if d.Score < threshold {
				continue
			}
			out = append(out, types.ShiftDetection(d, ch.Start, detectorID))
		}
	}
	return out, nil
}

// TextContentsDetections fans out detection across every (detector,
// region) pair concurrently, with a fail-fast join: the first failure
// aborts and is returned. Surviving detections carry start/end shifted
// by each region's offset.
func TextContentsDetections(ctx context.Context, octx *orchestrator.Context, headers map[string]string, detectors map[string]types.DetectorParams, offset int, inputs []Region) ([]types.Detection, error) {
	type job struct {
		detectorID string
		params     types.DetectorParams
		region     Region
	}

	var jobs []job
	for detectorID, params := range detectors {
		for _, region := range inputs {
			jobs = append(jobs, job{detectorID: detectorID, params: params, region: region})
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]types.Detection, len(jobs))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			detections, err := detectOneContent(ctx, octx, headers, j.detectorID, j.params, offset+j.region.Offset, j.region.Text)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[i] = detections
		}(i, j)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var all []types.Detection
	for _, r := range results {
		all = append(all, r...)
	}
	types.SortDetectionsByStart(all)
	return all, nil
}
