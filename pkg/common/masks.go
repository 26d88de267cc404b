// Package common holds the pure coordination helpers shared by the
// unary and streaming guardrail pipelines: masking, tokenization,
// generation dispatch, and the detector fan-out primitives.
package common

import "github.com/guardrails/orchestrator/pkg/types"

// Region is an (offset, text) pair: a byte range of some larger input
// and the text it covers.
type Region struct {
	Offset int
	Text   string
}

// ApplyMasks splits inputs into the regions configured by masks. With no
// masks, the whole input is a single region at offset 0.
func ApplyMasks(inputs string, masks []types.Mask) []Region {
	if len(masks) == 0 {
		return []Region{{Offset: 0, Text: inputs}}
	}
	regions := make([]Region, 0, len(masks))
	for _, m := range masks {
		start, end := m.Start, m.End
		if start < 0 {
			start = 0
		}
		if end > len(inputs) {
			end = len(inputs)
		}
		if start >= end {
			continue
		}
		regions = append(regions, Region{Offset: start, Text: inputs[start:end]})
	}
	return regions
}
