// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"piimerge/internal/detector"
	"piimerge/internal/merge"
	"piimerge/internal/observability"
)

// WorkerPool merges documents on a fixed number of goroutines. A pool is
// single-use: Start, Submit until done, Close, then drain Results.
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	engine   *merge.Engine
	observer *observability.StandardObserver
}

// Job represents one document to merge
type Job struct {
	// Index is the document's position in the batch
	Index int
	Input detector.Input
}

// Result represents the outcome of one job
type Result struct {
	Index    int
	ID       string
	Entities []detector.Entity

	// Error joins the document's invalid spans, or carries the context error
	// when the job was cancelled before it ran
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a pool of workers sharing one engine
func NewWorkerPool(ctx context.Context, workers int, engine *merge.Engine, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if observer == nil {
		observer = observability.NewNopObserver()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		engine:   engine,
		observer: observer,
	}
}

// Start initializes worker goroutines. Results is closed once every worker
// has exited.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	go func() {
		wp.wg.Wait()
		close(wp.results)
		wp.cancel()
	}()
}

// Submit queues a job. It returns false once the pool's context is done.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Cancel abandons queued jobs; they come back with the context error
func (wp *WorkerPool) Cancel() {
	wp.cancel()
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// Workers returns the number of workers
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		wp.results <- wp.processJob(job, id)
	}
}

// processJob merges a single document. Cancellation is only checked between
// documents.
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	if err := wp.ctx.Err(); err != nil {
		return &Result{Index: job.Index, ID: job.Input.ID, Error: err}
	}

	start := time.Now()
	finishTiming := wp.observer.StartTiming("worker_pool", "process_job", job.Input.ID)

	entities, err := wp.engine.MergeDocument(job.Input)
	duration := time.Since(start)

	finishTiming(err == nil, map[string]interface{}{
		"worker_id":    workerID,
		"entity_count": len(entities),
		"duration_ms":  duration.Milliseconds(),
		"had_error":    err != nil,
	})

	return &Result{
		Index:    job.Index,
		ID:       job.Input.ID,
		Entities: entities,
		Error:    err,
		Duration: duration,
	}
}
