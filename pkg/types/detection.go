package types

import "sort"

// Detection is a single classifier output for one chunk.
//
// Start/End/Text/DetectorID are pointers because a detector may omit
// positional information; a Detection surfaces (is returned to the
// caller) iff Score >= the effective threshold for its detector.
type Detection struct {
	Start      *int                   `json:"start,omitempty"`
	End        *int                   `json:"end,omitempty"`
	Text       *string                `json:"text,omitempty"`
	DetectorID *string                `json:"detector_id,omitempty"`
	Type        string                `json:"detection_type"`
	Detection   string                `json:"detection"`
	Score       float64               `json:"score"`
	Evidence    []DetectionEvidence   `json:"evidence,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// DetectionEvidence is supporting evidence attached to a Detection.
type DetectionEvidence struct {
	Name     string     `json:"name"`
	Value    *string    `json:"value,omitempty"`
	Score    *float64   `json:"score,omitempty"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Evidence is nested supporting evidence within a DetectionEvidence.
type Evidence struct {
	Name  string   `json:"name"`
	Value *string  `json:"value,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// DetectionResult groups the detections produced for one source element
// (a chat message index, or a stream frame index).
type DetectionResult struct {
	Index   int         `json:"index"`
	Results []Detection `json:"results"`
}

// SortDetectionsByStart sorts detections by Start ascending, with a
// missing Start sorting last. This is spec.md's ordering rule both within
// a chunk (§3) and within a DetectionResult's Results (§4.3/§8 property 4).
func SortDetectionsByStart(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		a, b := detections[i].Start, detections[j].Start
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// ShiftDetection returns a copy of d with Start/End shifted by offset and
// DetectorID set, as required by the fan-out primitives (spec.md §4.4).
func ShiftDetection(d Detection, offset int, detectorID string) Detection {
	out := d
	if d.Start != nil {
		s := *d.Start + offset
		out.Start = &s
	}
	if d.End != nil {
		e := *d.End + offset
		out.End = &e
	}
	id := detectorID
	out.DetectorID = &id
	return out
}
