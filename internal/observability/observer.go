// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *zap.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// ParseLevel maps a logging level name to an observability level. Unknown
// names fall back to ObservabilityMetrics.
func ParseLevel(name string) ObservabilityLevel {
	switch name {
	case "off", "none", "silent":
		return ObservabilityOff
	case "debug":
		return ObservabilityDebug
	default:
		return ObservabilityMetrics
	}
}

// NewStandardObserver creates observability component writing JSON lines to
// writer (stderr when nil)
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = os.Stderr
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), zapLevel(level))
	return NewObserverFromLogger(level, zap.New(core))
}

// NewObserverFromLogger wraps an existing zap logger, e.g. one built on a
// zaptest/observer core.
func NewObserverFromLogger(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil || level == ObservabilityOff {
		logger = zap.NewNop()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// NewNopObserver returns an observer that discards everything.
func NewNopObserver() *StandardObserver {
	return NewObserverFromLogger(ObservabilityOff, nil)
}

func zapLevel(level ObservabilityLevel) zapcore.Level {
	if level == ObservabilityDebug {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}

// Level returns the observability level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// Logger returns the underlying zap logger
func (o *StandardObserver) Logger() *zap.Logger {
	return o.logger
}

// Named returns a child observer whose log entries carry the component name.
// The debug observer, if any, is shared with the parent.
func (o *StandardObserver) Named(component string) *StandardObserver {
	return &StandardObserver{
		level:         o.level,
		logger:        o.logger.Named(component),
		DebugObserver: o.DebugObserver,
	}
}

// Warn logs a recoverable problem. Warnings are emitted at every level except Off.
func (o *StandardObserver) Warn(msg string, fields ...zap.Field) {
	o.logger.Warn(msg, fields...)
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, documentID string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			DocumentID: documentID,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	// Only log operations in debug mode
	if o.level != ObservabilityDebug {
		return
	}

	if data.RequestID == "" {
		data.RequestID = "req-" + uuid.NewString()
	}

	fields := []zap.Field{
		zap.String("component", data.Component),
		zap.String("request_id", data.RequestID),
		zap.Bool("success", data.Success),
		zap.Int64("duration_ms", data.DurationMs),
	}
	if data.DocumentID != "" {
		fields = append(fields, zap.String("document_id", data.DocumentID))
	}
	if data.Error != "" {
		fields = append(fields, zap.String("error", data.Error))
	}
	if data.ContentLength > 0 {
		fields = append(fields, zap.Int("content_length", data.ContentLength))
	}
	if data.EntityCount > 0 {
		fields = append(fields, zap.Int("entity_count", data.EntityCount))
	}
	if len(data.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", data.Metadata))
	}
	o.logger.Debug(data.Operation, fields...)
}

// Sync flushes buffered log entries
func (o *StandardObserver) Sync() error {
	return o.logger.Sync()
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	RequestID     string                 `json:"request_id"`
	DocumentID    string                 `json:"document_id,omitempty"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	EntityCount   int                    `json:"entity_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
