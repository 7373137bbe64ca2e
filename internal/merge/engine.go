// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package merge is the public entry point: it reconstructs whole PII entities
// from fragment-level model predictions using the pattern catalogue.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"piimerge/internal/aggregate"
	"piimerge/internal/detector"
	"piimerge/internal/metrics"
	"piimerge/internal/observability"
	"piimerge/internal/patterns"
	"piimerge/internal/scanner"

	"go.uber.org/zap"
)

// Config configures an Engine. The zero value of every field selects a
// default, except for the scoring options: start from DefaultConfig.
type Config struct {
	// Catalogue defaults to the built-in English catalogue
	Catalogue *patterns.Catalogue

	Scanner   scanner.Options
	Aggregate aggregate.Options

	// Observer defaults to a no-op observer
	Observer *observability.StandardObserver

	// Metrics defaults to metrics.Noop()
	Metrics metrics.Recorder
}

// DefaultConfig returns the documented defaults: blend weights 0.6/0.4,
// context window 40, validator penalty 0.25.
func DefaultConfig() Config {
	return Config{
		Scanner:   scanner.DefaultOptions(),
		Aggregate: aggregate.DefaultOptions(),
	}
}

// Engine merges predictions for one document at a time. It is immutable
// after New and safe for concurrent use.
type Engine struct {
	scanner  *scanner.Scanner
	opts     aggregate.Options
	observer *observability.StandardObserver
	metrics  metrics.Recorder

	// metricLabels are the label values entities_total may carry
	metricLabels map[string]bool
}

// New creates an engine. It fails only on unusable scoring options or when
// the built-in catalogue cannot be built.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Aggregate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring options: %w", err)
	}

	cat := cfg.Catalogue
	if cat == nil {
		var err error
		if cat, err = patterns.Build(); err != nil {
			return nil, err
		}
	}
	observer := cfg.Observer
	if observer == nil {
		observer = observability.NewNopObserver()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Noop()
	}

	metricLabels := make(map[string]bool)
	for _, label := range append(cat.EntityTypes(), aggregate.KnownLabels()...) {
		metricLabels[label] = true
	}

	return &Engine{
		scanner:      scanner.New(cat, cfg.Scanner),
		opts:         cfg.Aggregate,
		observer:     observer.Named("merge"),
		metrics:      recorder,
		metricLabels: metricLabels,
	}, nil
}

// Catalogue returns the engine's pattern catalogue
func (e *Engine) Catalogue() *patterns.Catalogue {
	return e.scanner.Catalogue()
}

// Merge reconstructs entities from text and the model's predictions. The
// result is sorted by start and never contains overlapping entities.
//
// Malformed predictions are dropped one by one, each with a logged warning
// and an *detector.InvalidSpanError; the returned error joins them and the
// entity slice is valid either way.
func (e *Engine) Merge(text string, preds []detector.RawPrediction) ([]detector.Entity, error) {
	return e.MergeDocument(detector.Input{Text: text, Predictions: preds})
}

// MergeDocument is Merge for an identified document; the ID is only used in
// log entries.
func (e *Engine) MergeDocument(in detector.Input) ([]detector.Entity, error) {
	start := time.Now()
	debug := e.observer.DebugObserver
	var finishStep func(bool, string)
	if debug != nil {
		finishStep = debug.StartStep("merge_engine", "merge", in.ID)
	}

	doc := detector.NewDocument(in.Text)
	valid, errs := e.validate(doc, in)

	units, skipped := e.scanner.Scan(doc)
	for _, s := range skipped {
		e.observer.Warn("skipped empty pattern match",
			zap.String("document_id", in.ID),
			zap.String("pattern", s.Pattern),
			zap.Int("offset", s.Prediction.Start))
	}

	entities, residual := aggregate.Aggregate(doc, units, valid, e.opts)
	residualCount := len(residual)
	entities = append(entities, e.clusterResiduals(doc, residual)...)
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Start != entities[j].Start {
			return entities[i].Start < entities[j].Start
		}
		return entities[i].End < entities[j].End
	})

	elapsed := time.Since(start)
	for _, ent := range entities {
		e.metrics.IncEntity(e.metricLabel(ent.Label), ent.Source)
	}
	e.metrics.ObserveMerge(elapsed, len(units), len(entities))

	err := errors.Join(errs...)
	e.observer.LogOperation(observability.StandardObservabilityData{
		Component:     "merge_engine",
		Operation:     "merge",
		DocumentID:    in.ID,
		DurationMs:    elapsed.Milliseconds(),
		Success:       err == nil,
		ContentLength: doc.Len(),
		EntityCount:   len(entities),
		Metadata: map[string]interface{}{
			"units":         len(units),
			"predictions":   len(in.Predictions),
			"invalid_spans": len(errs),
		},
	})
	if debug != nil {
		for _, ent := range entities {
			debug.LogDetail("merge_engine", fmt.Sprintf("entity %s [%d,%d) source=%s confidence=%.4f",
				ent.Label, ent.Start, ent.End, ent.Source, ent.Confidence))
		}
		debug.LogMetric("merge_engine", "units", len(units))
		debug.LogMetric("merge_engine", "residual_predictions", residualCount)
		debug.LogMetric("merge_engine", "skipped_matches", len(skipped))
		finishStep(err == nil, fmt.Sprintf("%d units, %d entities", len(units), len(entities)))
	}
	return entities, err
}

// Scan returns the pattern-only entities of text, as if the model had
// produced nothing.
func (e *Engine) Scan(text string) []detector.Entity {
	entities, _ := e.Merge(text, nil)
	return entities
}

// metricLabel maps a label onto the catalogue and hierarchy labels, or onto
// metrics.OtherLabel.
func (e *Engine) metricLabel(label string) string {
	if normalized := aggregate.NormalizeLabel(label); e.metricLabels[normalized] {
		return normalized
	}
	return metrics.OtherLabel
}

// validate drops malformed predictions, logging each one.
func (e *Engine) validate(doc *detector.Document, in detector.Input) ([]detector.RawPrediction, []error) {
	valid := make([]detector.RawPrediction, 0, len(in.Predictions))
	var errs []error
	for i, p := range in.Predictions {
		if spanErr := detector.CheckPrediction(doc, i, p); spanErr != nil {
			e.observer.Warn("dropping invalid prediction",
				zap.String("document_id", in.ID),
				zap.Int("index", i),
				zap.String("reason", spanErr.Reason.String()),
				zap.String("entity_type", p.EntityType),
				zap.Int("start", p.Start),
				zap.Int("end", p.End),
				zap.Float64("score", p.Score),
				zap.Int("text_length", doc.Len()))
			e.metrics.IncInvalidSpan(spanErr.Reason.String())
			errs = append(errs, spanErr)
			continue
		}
		valid = append(valid, p)
	}
	return valid, errs
}
