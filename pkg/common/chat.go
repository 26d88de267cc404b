package common

import (
	"context"
	"sort"

	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/types"
)

// FilterChatMessages rejects any message carrying non-text content as a
// Validation error rather than panicking: a chat-completions request
// with image or audio content cannot be chunked or detected.
func FilterChatMessages(messages []types.ChatMessageInternal) ([]types.ChatMessageInternal, error) {
	for _, m := range messages {
		if m.Content != nil && !m.Content.IsText() {
			return nil, orcherrors.Validation("message %d: only text content is supported for detection", m.MessageIndex)
		}
	}
	return messages, nil
}

// messageChunks is one message's chunks under a given chunker.
type messageChunks struct {
	messageIndex int
	chunks       []types.Chunk
}

// ChunkChatMessages groups messages by each configured chunker and
// chunks every message's text content under that chunker, concurrently.
func ChunkChatMessages(ctx context.Context, octx *orchestrator.Context, headers map[string]string, chunkerIDs []string, messages []types.ChatMessageInternal) (map[string][]messageChunks, error) {
	type job struct {
		chunkerID string
		message   types.ChatMessageInternal
	}

	var jobs []job
	for _, chunkerID := range chunkerIDs {
		for _, m := range messages {
			jobs = append(jobs, job{chunkerID: chunkerID, message: m})
		}
	}

	results := make([]messageChunks, len(jobs))
	chunkerOf := make([]string, len(jobs))
	errs := make([]error, len(jobs))

	done := make(chan struct{}, len(jobs))
	for i, j := range jobs {
		go func(i int, j job) {
			defer func() { done <- struct{}{} }()
			chunkerOf[i] = j.chunkerID

			var text string
			if j.message.Content != nil && j.message.Content.Text != nil {
				text = *j.message.Content.Text
			}

			client, err := octx.Chunker(j.chunkerID)
			if err != nil {
				errs[i] = orcherrors.ChunkerNotFound(j.chunkerID)
				return
			}
			chunks, err := client.Chunk(ctx, j.chunkerID, text, headers)
			if err != nil {
				errs[i] = orcherrors.ChunkerRequestFailed(j.chunkerID, err)
				return
			}
			results[i] = messageChunks{messageIndex: j.message.MessageIndex, chunks: chunks}
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

	byChunker := make(map[string][]messageChunks, len(chunkerIDs))
	for i := range jobs {
		byChunker[chunkerOf[i]] = append(byChunker[chunkerOf[i]], results[i])
	}
	return byChunker, nil
}

// ChatDetections runs every configured detector against the chat
// messages already grouped by chunker, one DetectionResult per message
// that surfaces detections, sorted by message index and, within a
// message, by detection start (missing start last).
func ChatDetections(ctx context.Context, octx *orchestrator.Context, headers map[string]string, detectors map[string]types.DetectorParams, chunksByChunker map[string][]messageChunks) ([]types.DetectionResult, error) {
	type job struct {
		detectorID string
		params     types.DetectorParams
		mc         messageChunks
	}

	var jobs []job
	for detectorID, params := range detectors {
		detectorCfg, ok := octx.Config.Detectors[detectorID]
		if !ok {
			return nil, orcherrors.DetectorNotFound(detectorID)
		}
		if detectorCfg.Type != config.DetectorTypeTextContents {
			return nil, orcherrors.Validation("detector %q: chat completions detection only supports TextContents detectors", detectorID)
		}
		for _, mc := range chunksByChunker[detectorCfg.ChunkerID] {
			jobs = append(jobs, job{detectorID: detectorID, params: params, mc: mc})
		}
	}

	results := make([]types.DetectionResult, len(jobs))
	errs := make([]error, len(jobs))
	done := make(chan struct{}, len(jobs))

	for i, j := range jobs {
		go func(i int, j job) {
			defer func() { done <- struct{}{} }()

			detectorCfg := octx.Config.Detectors[j.detectorID]
			clientParams, threshold := SplitThreshold(j.params, detectorCfg.DefaultThreshold)
			client, err := octx.TextContentsDetector(j.detectorID)
			if err != nil {
				errs[i] = orcherrors.DetectorNotFound(j.detectorID)
				return
			}

			var detections []types.Detection
			for _, ch := range j.mc.chunks {
				chunkDetections, err := detectChunk(ctx, client, j.detectorID, clientParams, threshold, ch, headers)
				if err != nil {
					errs[i] = err
					return
				}
				detections = append(detections, chunkDetections...)
			}
			results[i] = types.DetectionResult{Index: j.mc.messageIndex, Results: detections}
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

	byMessage := make(map[int][]types.Detection)
	for _, r := range results {
		if len(r.Results) == 0 {
			continue
		}
		byMessage[r.Index] = append(byMessage[r.Index], r.Results...)
	}

	var out []types.DetectionResult
	for index, detections := range byMessage {
		types.SortDetectionsByStart(detections)
		out = append(out, types.DetectionResult{Index: index, Results: detections})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
