// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scanner finds semantic units: whole PII spans located by the
// pattern catalogue, resolved against each other by priority so that no two
// units overlap.
package scanner

import (
	"sort"

	"piimerge/internal/detector"
	"piimerge/internal/patterns"
)

// Defaults for Options
const (
	DefaultContextWindow    = detector.DefaultContextChars
	DefaultValidatorPenalty = 0.25
)

// Options tunes unit scoring.
type Options struct {
	// ContextWindow is the number of characters inspected on each side of a
	// match for context words.
	ContextWindow int

	// ValidatorPenalty is subtracted from the base score when the pattern's
	// validator rejects the match. The score never drops below zero.
	ValidatorPenalty float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ContextWindow:    DefaultContextWindow,
		ValidatorPenalty: DefaultValidatorPenalty,
	}
}

// Scanner applies a catalogue to documents. It holds no per-document state
// and is safe for concurrent use.
type Scanner struct {
	catalogue *patterns.Catalogue
	groups    [][]patterns.Pattern
	opts      Options
	context   *detector.ContextExtractor
}

// New creates a scanner for the catalogue. Negative option values are
// treated as zero.
func New(catalogue *patterns.Catalogue, opts Options) *Scanner {
	opts.ContextWindow = max(opts.ContextWindow, 0)
	opts.ValidatorPenalty = max(opts.ValidatorPenalty, 0)
	return &Scanner{
		catalogue: catalogue,
		groups:    catalogue.PriorityGroups(),
		opts:      opts,
		context:   detector.NewContextExtractor().WithContextChars(opts.ContextWindow),
	}
}

// Scan is a convenience wrapper around New(catalogue, opts).Scan(doc).
func Scan(doc *detector.Document, catalogue *patterns.Catalogue, opts Options) []detector.SemanticUnit {
	units, _ := New(catalogue, opts).Scan(doc)
	return units
}

// Catalogue returns the scanner's catalogue
func (s *Scanner) Catalogue() *patterns.Catalogue {
	return s.catalogue
}

// candidate is a match waiting to be claimed, in character offsets
type candidate struct {
	start, end int
	pattern    *patterns.Pattern
}

// Scan returns the accepted units sorted by start. Patterns are applied in
// descending priority; within one priority the longest candidates claim
// first, then earlier-declared patterns, then earlier starts. A match that
// intersects an already claimed span is discarded.
//
// The second result reports pattern matches that were skipped because they
// were empty. They do not affect the units.
func (s *Scanner) Scan(doc *detector.Document) ([]detector.SemanticUnit, []*detector.InvalidSpanError) {
	var (
		claimed claimedSet
		units   []detector.SemanticUnit
		skipped []*detector.InvalidSpanError
	)

	for _, group := range s.groups {
		var cands []candidate
		for i := range group {
			p := &group[i]
			for _, loc := range p.Regex.FindAllStringSubmatchIndex(doc.Text(), -1) {
				bs, be := loc[2*p.Group], loc[2*p.Group+1]
				if bs < 0 {
					// capture group did not participate
					continue
				}
				start, end := doc.CharOffset(bs), doc.CharOffset(be)
				if start >= end {
					skipped = append(skipped, &detector.InvalidSpanError{
						Reason:     detector.ReasonEmptyMatch,
						Index:      -1,
						Prediction: detector.RawPrediction{Start: start, End: end, EntityType: p.EntityType},
						Pattern:    p.Name,
						TextLength: doc.Len(),
					})
					continue
				}
				cands = append(cands, candidate{start: start, end: end, pattern: p})
			}
		}

		sort.SliceStable(cands, func(i, j int) bool {
			li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
			if li != lj {
				return li > lj
			}
			if cands[i].pattern.Order != cands[j].pattern.Order {
				return cands[i].pattern.Order < cands[j].pattern.Order
			}
			return cands[i].start < cands[j].start
		})

		for _, c := range cands {
			if !claimed.claim(c.start, c.end) {
				continue
			}
			units = append(units, detector.SemanticUnit{
				Start:        c.start,
				End:          c.end,
				EntityType:   c.pattern.EntityType,
				PatternScore: s.score(doc, c),
				Pattern:      c.pattern.Name,
			})
		}
	}

	sort.Slice(units, func(i, j int) bool {
		return units[i].Start < units[j].Start
	})
	return units, skipped
}

// score applies the validator penalty and the context boost to the base score.
func (s *Scanner) score(doc *detector.Document, c candidate) float64 {
	p := c.pattern
	score := p.BaseScore
	if !p.Validate(doc.Slice(c.start, c.end)) {
		score = max(score-s.opts.ValidatorPenalty, 0)
	}
	if p.ContextBoost > 0 && len(p.ContextWords) > 0 {
		info := s.context.ExtractContext(doc, c.start, c.end)
		if len(s.context.FindKeywords(info, p.ContextWords)) > 0 {
			score = min(score+p.ContextBoost, 1)
		}
	}
	return score
}
