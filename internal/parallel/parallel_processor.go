// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel merges batches of documents concurrently.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"piimerge/internal/detector"
	"piimerge/internal/merge"
	"piimerge/internal/observability"
)

// ParallelProcessor manages parallel document merging
type ParallelProcessor struct {
	engine   *merge.Engine
	workers  int
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	TotalEntities      int           `json:"total_entities"`
	InvalidSpans       int           `json:"invalid_spans"`
	TotalDuration      time.Duration `json:"total_duration_ms"`
	WorkerCount        int           `json:"worker_count"`
	AvgDocumentTime    time.Duration `json:"avg_document_time_ms"`
}

// DocumentResult is the merge outcome of one input document
type DocumentResult struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Entities []detector.Entity `json:"entities" yaml:"entities"`

	// Err joins the document's dropped predictions; Entities is still valid.
	// It is the context error for documents that never ran.
	Err error `json:"-" yaml:"-"`
}

// DefaultWorkers returns the worker count used when none is configured
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8) // Cap at 8 workers to avoid resource exhaustion
}

// NewParallelProcessor creates a new parallel processor. workers <= 0 selects
// DefaultWorkers.
func NewParallelProcessor(engine *merge.Engine, workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if observer == nil {
		observer = observability.NewNopObserver()
	}
	return &ParallelProcessor{
		engine:   engine,
		workers:  workers,
		observer: observer,
	}
}

// ProgressCallback is called when a document is completed
type ProgressCallback func(completed, total int, documentID string)

// Process merges docs in parallel. Results come back in input order. The
// returned error is non-nil only when ctx was cancelled; per-document
// problems are reported in DocumentResult.Err.
func (pp *ParallelProcessor) Process(ctx context.Context, docs []detector.Input) ([]DocumentResult, *ProcessingStats, error) {
	return pp.ProcessWithProgress(ctx, docs, nil)
}

// ProcessWithProgress is Process with a progress callback. The callback runs
// on the caller's goroutine.
func (pp *ParallelProcessor) ProcessWithProgress(ctx context.Context, docs []detector.Input, progressCallback ProgressCallback) ([]DocumentResult, *ProcessingStats, error) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_documents", "batch")

	pool := NewWorkerPool(ctx, min(pp.workers, max(len(docs), 1)), pp.engine, pp.observer)
	defer pool.Cancel()
	pool.Start()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, doc := range docs {
			if doc.ID == "" {
				doc.ID = fmt.Sprintf("doc_%d", i)
			}
			if !pool.Submit(&Job{Index: i, Input: doc}) {
				return
			}
		}
	}()

	results := make([]DocumentResult, len(docs))
	done := make([]bool, len(docs))
	stats := &ProcessingStats{
		TotalDocuments: len(docs),
		WorkerCount:    pool.Workers(),
	}
	totalDuration := time.Duration(0)
	completed := 0
	cancelled := false

	for result := range pool.Results() {
		results[result.Index] = DocumentResult{ID: result.ID, Entities: result.Entities, Err: result.Error}
		done[result.Index] = true
		completed++

		if result.Error == nil || errors.Is(result.Error, detector.ErrInvalidSpan) {
			stats.ProcessedDocuments++
			stats.TotalEntities += len(result.Entities)
			stats.InvalidSpans += countInvalidSpans(result.Error)
			totalDuration += result.Duration
		} else {
			cancelled = true
			pp.observer.LogOperation(observability.StandardObservabilityData{
				Component:  "parallel_processor",
				Operation:  "document_processing",
				DocumentID: result.ID,
				Success:    false,
				Error:      result.Error.Error(),
			})
		}

		if progressCallback != nil {
			progressCallback(completed, len(docs), result.ID)
		}
	}

	for i := range results {
		if !done[i] {
			cancelled = true
			id := docs[i].ID
			if id == "" {
				id = fmt.Sprintf("doc_%d", i)
			}
			results[i] = DocumentResult{ID: id, Err: ctx.Err()}
		}
	}
	var err error
	if cancelled {
		err = ctx.Err()
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgDocumentTime = totalDuration / time.Duration(max(stats.ProcessedDocuments, 1))

	finishTiming(err == nil, map[string]interface{}{
		"total_documents":     stats.TotalDocuments,
		"processed_documents": stats.ProcessedDocuments,
		"total_entities":      stats.TotalEntities,
		"invalid_spans":       stats.InvalidSpans,
		"worker_count":        stats.WorkerCount,
		"duration_ms":         stats.TotalDuration.Milliseconds(),
	})

	return results, stats, err
}

func countInvalidSpans(err error) int {
	return len(detector.Warnings(err))
}
