// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

// RawPrediction is one fragment-level model output. Offsets are character
// (code point) offsets into the source text, Start inclusive, End exclusive.
type RawPrediction struct {
	Start      int     `json:"start" yaml:"start"`
	End        int     `json:"end" yaml:"end"`
	EntityType string  `json:"entity_type" yaml:"entity_type"`
	Score      float64 `json:"score" yaml:"score"`
}

// Overlaps reports whether the prediction intersects [start, end).
func (p RawPrediction) Overlaps(start, end int) bool {
	return p.Start < end && start < p.End
}

// SemanticUnit is a whole PII span found by pattern matching, independent of
// model tokenization.
type SemanticUnit struct {
	Start      int
	End        int
	EntityType string

	// PatternScore already reflects the validator result and context boost
	PatternScore float64

	// Pattern records which catalogue entry produced the unit
	Pattern string
}

// Entity is a finalized PII span handed to downstream consumers.
//
// With whole-span predictions trusted (the default), feeding entities back in
// through AsPrediction reproduces the same spans, labels and confidences.
// Source does not survive that round trip: every entity arrives as a
// whole-span prediction and comes back as SourceModel.
type Entity struct {
	Start      int     `json:"start" yaml:"start"`
	End        int     `json:"end" yaml:"end"`
	Text       string  `json:"text" yaml:"text"`
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Source is "pattern", "merged", "model" or "cluster"
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Entity sources
const (
	SourcePattern = "pattern" // unit with no model corroboration
	SourceMerged  = "merged"  // unit joined with overlapping predictions
	SourceModel   = "model"   // prediction passed through unchanged
	SourceCluster = "cluster" // overlapping predictions with no pattern coverage
)

// AsPrediction reinterprets a finalized entity as model input.
func (e Entity) AsPrediction() RawPrediction {
	return RawPrediction{
		Start:      e.Start,
		End:        e.End,
		EntityType: e.Label,
		Score:      e.Confidence,
	}
}

// Overlaps reports whether the entity intersects [start, end).
func (e Entity) Overlaps(start, end int) bool {
	return e.Start < end && start < e.End
}

// Input is a document to merge: source text plus whatever the model produced.
type Input struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Text        string          `json:"text" yaml:"text"`
	Predictions []RawPrediction `json:"predictions,omitempty" yaml:"predictions,omitempty"`
}
