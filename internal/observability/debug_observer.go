// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver
	depth atomic.Int32
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(writer io.Writer) *DebugObserver {
	return WrapDebug(NewStandardObserver(ObservabilityDebug, writer))
}

// WrapDebug attaches step logging to an existing observer.
func WrapDebug(o *StandardObserver) *DebugObserver {
	d := &DebugObserver{StandardObserver: o}
	o.DebugObserver = d
	return d
}

// StartStep begins a processing step. Nested steps are logged with their depth.
func (d *DebugObserver) StartStep(component, step, documentID string) func(success bool, details string) {
	start := time.Now()
	depth := d.depth.Add(1) - 1

	d.logger.Debug("step started",
		zap.String("component", component),
		zap.String("step", step),
		zap.String("document_id", documentID),
		zap.Int32("depth", depth))

	return func(success bool, details string) {
		d.depth.Add(-1)
		msg := "step completed"
		if !success {
			msg = "step failed"
		}
		d.logger.Debug(msg,
			zap.String("component", component),
			zap.String("step", step),
			zap.Int32("depth", depth),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("details", details))
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.logger.Debug(detail, zap.String("component", component), zap.Int32("depth", d.depth.Load()))
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.Debug("metric",
		zap.String("component", component),
		zap.String("metric", metric),
		zap.Any("value", value))
}
