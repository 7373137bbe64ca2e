// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package aggregate joins semantic units with the model predictions that
// overlap them and turns each unit into one entity with a blended confidence.
package aggregate

import (
	"fmt"
	"sort"

	"piimerge/internal/detector"
)

// Weighting modes
const (
	// WeightingFixed blends with the configured weights regardless of how
	// much of the unit the fragments cover.
	WeightingFixed = "fixed"

	// WeightingCoverage scales the model weight by the fraction of the unit
	// covered by fragments; the uncovered share moves to the pattern score.
	WeightingCoverage = "coverage"
)

// Defaults for Options
const (
	DefaultModelWeight   = 0.6
	DefaultPatternWeight = 0.4
)

// Options controls label selection and scoring.
type Options struct {
	ModelWeight   float64
	PatternWeight float64

	// WeightingMode is WeightingFixed or WeightingCoverage
	WeightingMode string

	// TrustWholeSpanPredictions emits a unit's only overlapping prediction
	// unchanged when it already spans the unit exactly.
	TrustWholeSpanPredictions bool

	// PreferModelLabels labels merged units with the dominant model label.
	// When false the pattern's entity type is kept.
	PreferModelLabels bool

	// NormalizeLabels canonicalizes model labels before voting.
	NormalizeLabels bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ModelWeight:               DefaultModelWeight,
		PatternWeight:             DefaultPatternWeight,
		WeightingMode:             WeightingFixed,
		TrustWholeSpanPredictions: true,
		PreferModelLabels:         true,
		NormalizeLabels:           true,
	}
}

// Validate checks the options for values that cannot produce a confidence.
func (o Options) Validate() error {
	if o.ModelWeight < 0 || o.PatternWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative (model=%g, pattern=%g)", o.ModelWeight, o.PatternWeight)
	}
	if o.ModelWeight+o.PatternWeight == 0 {
		return fmt.Errorf("blend weights must not both be zero")
	}
	switch o.WeightingMode {
	case "", WeightingFixed, WeightingCoverage:
		return nil
	default:
		return fmt.Errorf("invalid weighting mode %q (must be %s or %s)", o.WeightingMode, WeightingFixed, WeightingCoverage)
	}
}

// Aggregate turns every unit into an entity and returns the predictions that
// intersect no unit, in input order. Predictions must already be valid for
// doc. Units must be sorted by start and non-overlapping, as the scanner
// returns them.
func Aggregate(doc *detector.Document, units []detector.SemanticUnit, preds []detector.RawPrediction, opts Options) ([]detector.Entity, []detector.RawPrediction) {
	order := make([]int, len(preds))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return preds[order[a]].Start < preds[order[b]].Start
	})

	used := make([]bool, len(preds))
	entities := make([]detector.Entity, 0, len(units))
	var group []detector.RawPrediction

	for _, u := range units {
		group = group[:0]
		for _, idx := range order {
			p := preds[idx]
			if p.Start >= u.End {
				break
			}
			if p.End <= u.Start {
				continue
			}
			group = append(group, p)
			used[idx] = true
		}
		entities = append(entities, Unit(doc, u, group, opts))
	}

	var residual []detector.RawPrediction
	for i, p := range preds {
		if !used[i] {
			residual = append(residual, p)
		}
	}
	return entities, residual
}

// Unit builds the entity for one unit from the predictions overlapping it.
func Unit(doc *detector.Document, u detector.SemanticUnit, overlapping []detector.RawPrediction, opts Options) detector.Entity {
	e := detector.Entity{
		Start: u.Start,
		End:   u.End,
		Text:  doc.Slice(u.Start, u.End),
	}

	switch {
	case len(overlapping) == 0:
		e.Label = u.EntityType
		e.Confidence = clamp01(u.PatternScore)
		e.Source = detector.SourcePattern

	case opts.TrustWholeSpanPredictions && len(overlapping) == 1 &&
		overlapping[0].Start == u.Start && overlapping[0].End == u.End:
		e.Label = overlapping[0].EntityType
		e.Confidence = overlapping[0].Score
		e.Source = detector.SourceModel

	default:
		e.Label = u.EntityType
		if opts.PreferModelLabels {
			e.Label = DominantLabel(overlapping, opts.NormalizeLabels)
		}
		e.Confidence = Blend(MeanScore(overlapping), u.PatternScore, Coverage(u, overlapping), opts)
		e.Source = detector.SourceMerged
	}
	return e
}

// Blend combines the mean model score with the pattern score. coverage is
// the fraction of the unit covered by fragments and only matters in
// coverage mode.
func Blend(modelScore, patternScore, coverage float64, opts Options) float64 {
	mw, pw := opts.ModelWeight, opts.PatternWeight
	if opts.WeightingMode == WeightingCoverage {
		coverage = clamp01(coverage)
		pw += mw * (1 - coverage)
		mw *= coverage
	}
	return clamp01(mw*modelScore + pw*patternScore)
}

// MeanScore is the unweighted mean of the prediction scores, or 0 for none.
func MeanScore(preds []detector.RawPrediction) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for _, p := range preds {
		sum += p.Score
	}
	return sum / float64(len(preds))
}

// Coverage is the fraction of the unit's characters covered by at least one
// prediction.
func Coverage(u detector.SemanticUnit, preds []detector.RawPrediction) float64 {
	width := u.End - u.Start
	if width <= 0 {
		return 0
	}

	spans := make([][2]int, 0, len(preds))
	for _, p := range preds {
		s, e := max(p.Start, u.Start), min(p.End, u.End)
		if s < e {
			spans = append(spans, [2]int{s, e})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	covered, reach := 0, u.Start
	for _, sp := range spans {
		s := max(sp[0], reach)
		if sp[1] > s {
			covered += sp[1] - s
		}
		reach = max(reach, sp[1])
	}
	return float64(covered) / float64(width)
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
