package common

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/clients/detector"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

// ContextDetections runs every TextContextDoc-category detector against
// a fixed content string and its supporting context documents/URLs,
// returning every detection meeting its effective threshold.
func ContextDetections(ctx context.Context, octx *orchestrator.Context, headers map[string]string, detectors map[string]types.DetectorParams, content string, contextType detector.ContextType, contextDocs []string) ([]types.Detection, error) {
	type job struct {
		detectorID string
		params     types.DetectorParams
	}

	var jobs []job
	for detectorID, params := range detectors {
		jobs = append(jobs, job{detectorID: detectorID, params: params})
	}

	results := make([][]types.Detection, len(jobs))
	errs := make([]error, len(jobs))
	done := make(chan struct{}, len(jobs))

	for i, j := range jobs {
		go func(i int, j job) {
			defer func() { done <- struct{}{} }()

			detectorCfg, ok := octx.Config.Detectors[j.detectorID]
			if !ok {
				errs[i] = orcherrors.DetectorNotFound(j.detectorID)
				return
			}
			clientParams, threshold := SplitThreshold(j.params, detectorCfg.DefaultThreshold)

			client, err := octx.TextContextDocDetector(j.detectorID)
			if err != nil {
				errs[i] = orcherrors.DetectorNotFound(j.detectorID)
				return
			}

			detectionResults, err := client.TextContextDoc(ctx, j.detectorID, detector.ContextDocsDetectionRequest{
				Content:        content,
				ContextType:    contextType,
				Context:        contextDocs,
				DetectorParams: clientParams,
			}, headers)
			if err != nil {
				errs[i] = orcherrors.DetectorRequestFailed(j.detectorID, err)
				return
			}

			var surfaced []types.Detection
			for _, r := range detectionResults {
				for _, d := range r.Results {
					if d.Score < threshold {
						continue
					}
					id := j.detectorID
					d.DetectorID = &id
					surfaced = append(surfaced, d)
				}
			}
			results[i] = surfaced
		}(i, j)
	}
	for range jobs {
		<-done
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []types.Detection
	for _, r := range results {
		all = append(all, r...)
	}
	types.SortDetectionsByStart(all)
	return all, nil
}
