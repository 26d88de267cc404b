package handlers

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/guardrails/orchestrator/pkg/common"
	"github.com/guardrails/orchestrator/pkg/orcherrors"
	"github.com/guardrails/orchestrator/pkg/orchestrator"
	"github.com/guardrails/orchestrator/pkg/streaming"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"github.com/guardrails/orchestrator/pkg/types"
)

// StreamResult is one frame of a streaming classification-with-gen
// response, or an error that terminates the stream.
type StreamResult struct {
	Value *types.ClassifiedGeneratedTextStreamResult
	Err   error
}

// StreamingClassificationWithGen implements spec.md §4.5/§4.6: the
// state machine short-circuits on input detections, otherwise opens a
// generation stream and, if output detectors are configured, routes it
// through the chunking/detection/batching pipeline before emitting
// response frames.
func StreamingClassificationWithGen(ctx context.Context, octx *orchestrator.Context, task orchestrator.StreamingClassificationWithGenTask) <-chan StreamResult {
	return orchestrator.DispatchStream(func() <-chan StreamResult {
		out := make(chan StreamResult, streaming.ChannelCapacity())

		go func() {
			defer close(out)
			log.Printf("trace=%s task=streaming_classification_with_gen started", task.TraceID)

			ctx, span := octx.Tracer().Start(ctx, "guardrails.streaming_classification_with_gen",
				trace.WithAttributes(telemetry.GetBaseAttributes("streaming_classification_with_gen", task.TraceID, octx.Telemetry, task.Headers)...))
			defer span.End()

			if detectors := task.GuardrailsConfig.InputDetectors(); len(detectors) > 0 {
				response, err := classificationInputDetectionStream(ctx, octx, task, detectors)
				if err != nil {
					send(ctx, out, StreamResult{Err: err})
					return
				}
				if response != nil {
					send(ctx, out, StreamResult{Value: response})
					return
				}
			}

			client, err := octx.Generation()
			if err != nil {
				send(ctx, out, StreamResult{Err: err})
				return
			}
			generationFrames, generationErrs := common.GenerateStream(ctx, client, task.Headers, task.ModelID, task.Inputs, task.TextGenParams)

			outputDetectors := task.GuardrailsConfig.OutputDetectors()
			if len(outputDetectors) == 0 {
				forwardGenerationStream(ctx, out, generationFrames, generationErrs)
				return
			}

			runOutputDetectionPipeline(ctx, octx, task, outputDetectors, generationFrames, generationErrs, out)
		}()

		return out
	})
}

func send(ctx context.Context, out chan<- StreamResult, r StreamResult) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

func classificationInputDetectionStream(ctx context.Context, octx *orchestrator.Context, task orchestrator.StreamingClassificationWithGenTask, detectors map[string]types.DetectorParams) (*types.ClassifiedGeneratedTextStreamResult, error) {
	regions := common.ApplyMasks(task.Inputs, task.GuardrailsConfig.InputMasks())
	detections, err := common.TextContentsDetections(ctx, octx, task.Headers, detectors, 0, regions)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return nil, nil
	}

	client, err := octx.Generation()
	if err != nil {
		return nil, err
	}
	inputTokenCount, _, err := common.Tokenize(ctx, client, task.Headers, task.ModelID, task.Inputs)
	if err != nil {
		return nil, err
	}

	return &types.ClassifiedGeneratedTextStreamResult{
		InputTokenCount: inputTokenCount,
		TokenClassificationResults: types.TokenClassificationResults{
			Input: detections,
		},
		Warnings: []types.DetectionWarning{types.NewUnsuitableInputWarning()},
	}, nil
}

func forwardGenerationStream(ctx context.Context, out chan<- StreamResult, frames <-chan types.ClassifiedGeneratedTextStreamResult, errs <-chan error) {
	for frames != nil {
		select {
		case frame, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			if !send(ctx, out, StreamResult{Value: &frame}) {
				return
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				send(ctx, out, StreamResult{Err: err})
				return
			}
		}
	}
}

// generationsBuffer is the single-writer/many-reader vector spec.md
// §4.5/§5 describes: the fan-in task writes, response assembly reads
// slices of it.
type generationsBuffer struct {
	mu    sync.RWMutex
	items []types.ClassifiedGeneratedTextStreamResult
}

func (g *generationsBuffer) append(v types.ClassifiedGeneratedTextStreamResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = append(g.items, v)
}

func (g *generationsBuffer) slice(start, end int) []types.ClassifiedGeneratedTextStreamResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if start < 0 || start >= len(g.items) {
		return nil
	}
	if end >= len(g.items) {
		end = len(g.items) - 1
	}
	out := make([]types.ClassifiedGeneratedTextStreamResult, end-start+1)
	copy(out, g.items[start:end+1])
	return out
}

func runOutputDetectionPipeline(ctx context.Context, octx *orchestrator.Context, task orchestrator.StreamingClassificationWithGenTask, detectors map[string]types.DetectorParams, generationFrames <-chan types.ClassifiedGeneratedTextStreamResult, generationErrs <-chan error, out chan<- StreamResult) {
	generations := &generationsBuffer{}
	input := make(chan streaming.InputFrame, streaming.ChannelCapacity())

	// Stage A: generation fan-in.
	go func() {
		defer close(input)
		index := 0
		frames := generationFrames
		errs := generationErrs
		for frames != nil || errs != nil {
			select {
			case frame, ok := <-frames:
				if !ok {
					frames = nil
					continue
				}
				var text string
				if frame.GeneratedText != nil {
					text = *frame.GeneratedText
				}
				generations.append(frame)
				select {
				case input <- streaming.InputFrame{Index: index, Text: text}:
				case <-ctx.Done():
					return
				}
				index++
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				if err != nil {
					select {
					case input <- streaming.InputFrame{Index: index, Err: err}:
					case <-ctx.Done():
					}
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	chunkerGroups, err := groupDetectorsByChunker(octx, detectors)
	if err != nil {
		send(ctx, out, StreamResult{Err: err})
		return
	}

	var detectionStreams []<-chan streaming.DetectionFrame
	var detectorIDs []string
	var inputChannels []chan streaming.InputFrame

	for chunkerID, group := range chunkerGroups {
		chunkerInput := make(chan streaming.InputFrame, streaming.ChannelCapacity())
		inputChannels = append(inputChannels, chunkerInput)

		chunkerClient, err := octx.Chunker(chunkerID)
		if err != nil {
			send(ctx, out, StreamResult{Err: err})
			return
		}
		chunks, chunkErrs := streaming.ChunkerStream(ctx, chunkerClient, chunkerID, task.Headers, chunkerInput)
		fanned := fanOutChunks(ctx, chunks, chunkErrs, len(group))

		for i, detectorID := range group {
			detectorCfg := octx.Config.Detectors[detectorID]
			clientParams, threshold := common.SplitThreshold(detectors[detectorID], detectorCfg.DefaultThreshold)
			client, err := octx.TextContentsDetector(detectorID)
			if err != nil {
				send(ctx, out, StreamResult{Err: err})
				return
			}
			detectionStreams = append(detectionStreams, streaming.DetectionStream(ctx, client, detectorID, clientParams, threshold, detectorCfg.BatchSize(), task.Headers, fanned[i]))
			detectorIDs = append(detectorIDs, detectorID)
		}
	}

	// Fan the single upstream input into every chunker group's input.
	go func() {
		defer func() {
			for _, ch := range inputChannels {
				close(ch)
			}
		}()
		for frame := range input {
			for _, ch := range inputChannels {
				select {
				case ch <- frame:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var batch <-chan streaming.BatchFrame
	if len(detectionStreams) == 1 {
		batch = singleStreamToBatch(ctx, detectionStreams[0])
	} else {
		batch = streaming.DetectionBatchStream(ctx, detectorIDs, detectionStreams)
	}

	for bf := range batch {
		if bf.Err != nil {
			send(ctx, out, StreamResult{Err: bf.Err})
			return
		}
		response := outputDetectionResponse(generations, bf.Chunk, bf.Detections)
		if !send(ctx, out, StreamResult{Value: response}) {
			return
		}
	}
}

func singleStreamToBatch(ctx context.Context, in <-chan streaming.DetectionFrame) <-chan streaming.BatchFrame {
	out := make(chan streaming.BatchFrame, streaming.ChannelCapacity())
	go func() {
		defer close(out)
		for frame := range in {
			bf := streaming.BatchFrame{Chunk: frame.Chunk, Detections: frame.Detections, Err: frame.Err}
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

// fanOutChunks duplicates a single chunker stream to n independent
// detector-facing channels, since each detector in a chunker group
// consumes the same chunk sequence independently.
func fanOutChunks(ctx context.Context, chunks <-chan types.Chunk, errs <-chan error, n int) []chan types.Chunk {
	out := make([]chan types.Chunk, n)
	for i := range out {
		out[i] = make(chan types.Chunk, streaming.ChannelCapacity())
	}
	go func() {
		defer func() {
			for _, ch := range out {
				close(ch)
			}
		}()
		for {
			select {
			case ch, ok := <-chunks:
				if !ok {
					if err, ok := <-errs; ok && err != nil {
						log.Printf("chunker stream error: %v", err)
					}
					return
				}
				for _, dst := range out {
					select {
					case dst <- ch:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func groupDetectorsByChunker(octx *orchestrator.Context, detectors map[string]types.DetectorParams) (map[string][]string, error) {
	groups := make(map[string][]string)
	for id := range detectors {
		cfg, ok := octx.Config.Detectors[id]
		if !ok {
			return nil, orcherrors.DetectorNotFound(id)
		}
		groups[cfg.ChunkerID] = append(groups[cfg.ChunkerID], id)
	}
	return groups, nil
}

// outputDetectionResponse builds a ClassifiedGeneratedTextStreamResult
// from a batched (chunk, detections) pair and the shared generations
// buffer, per spec.md §4.5 Stage E.
func outputDetectionResponse(generations *generationsBuffer, chunk types.Chunk, detections []types.Detection) *types.ClassifiedGeneratedTextStreamResult {
	slice := generations.slice(chunk.InputStartIndex, chunk.InputEndIndex)

	var last types.ClassifiedGeneratedTextStreamResult
	if len(slice) > 0 {
		last = slice[len(slice)-1]
	}

	var tokens []types.GeneratedToken
	for _, g := range slice {
		tokens = append(tokens, g.Tokens...)
	}

	start := chunk.Start
	end := chunk.End
	response := &types.ClassifiedGeneratedTextStreamResult{
		GeneratedText:       strPtr(chunk.Text),
		StartIndex:          &start,
		ProcessedIndex:      &end,
		Tokens:              tokens,
		FinishReason:        last.FinishReason,
		GeneratedTokenCount: last.GeneratedTokenCount,
		Seed:                last.Seed,
	}
	response.TokenClassificationResults.Output = detections

	if chunk.InputStartIndex == 0 && len(slice) > 0 {
		first := slice[0]
		response.InputTokenCount = first.InputTokenCount
		response.Seed = first.Seed
		if len(slice) > 1 {
			response.InputTokens = slice[1].InputTokens
		} else {
			response.InputTokens = []types.GeneratedToken{}
		}
	}

	return response
}

func strPtr(s string) *string { return &s }
