// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics records merge engine activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name
const Namespace = "piimerge"

// OtherLabel replaces entity labels outside the known set
const OtherLabel = "other"

// MaxEntityLabels bounds the distinct label values of entities_total. Labels
// first seen after the limit is reached are counted as OtherLabel.
const MaxEntityLabels = 128

// Recorder receives merge engine events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// ObserveMerge records one Merge call
	ObserveMerge(duration time.Duration, units, entities int)

	// IncEntity counts one emitted entity. Callers pass a label from a
	// bounded set, or OtherLabel.
	IncEntity(label, source string)

	// IncInvalidSpan counts one dropped prediction
	IncInvalidSpan(reason string)
}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	mergeDuration  prometheus.Histogram
	unitsPerDoc    prometheus.Histogram
	entitiesPerDoc prometheus.Histogram
	documents      prometheus.Counter
	entities       *prometheus.CounterVec
	invalidSpans   *prometheus.CounterVec
	registry       *prometheus.Registry

	mu     sync.Mutex
	labels map[string]struct{}
}

// NewPrometheus registers the merge metrics with reg. A nil reg gets a fresh
// private registry. Registering twice on the same registry fails.
func NewPrometheus(reg *prometheus.Registry) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Prometheus{
		registry: reg,
		labels:   make(map[string]struct{}),
		mergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "merge_duration_seconds",
			Help:      "Time spent merging one document.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		unitsPerDoc: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "semantic_units_per_document",
			Help:      "Number of semantic units found per document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		entitiesPerDoc: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "entities_per_document",
			Help:      "Number of entities emitted per document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Total number of merged documents.",
		}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "entities_total",
			Help:      "Total number of emitted entities.",
		}, []string{"label", "source"}),
		invalidSpans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invalid_spans_total",
			Help:      "Total number of dropped predictions.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{m.mergeDuration, m.unitsPerDoc, m.entitiesPerDoc, m.documents, m.entities, m.invalidSpans} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register merge metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveMerge implements Recorder
func (m *Prometheus) ObserveMerge(duration time.Duration, units, entities int) {
	m.documents.Inc()
	m.mergeDuration.Observe(duration.Seconds())
	m.unitsPerDoc.Observe(float64(units))
	m.entitiesPerDoc.Observe(float64(entities))
}

// IncEntity implements Recorder
func (m *Prometheus) IncEntity(label, source string) {
	m.entities.WithLabelValues(m.boundLabel(label), source).Inc()
}

// boundLabel admits new label values until MaxEntityLabels is reached.
func (m *Prometheus) boundLabel(label string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labels[label]; ok {
		return label
	}
	if len(m.labels) >= MaxEntityLabels {
		return OtherLabel
	}
	m.labels[label] = struct{}{}
	return label
}

// IncInvalidSpan implements Recorder
func (m *Prometheus) IncInvalidSpan(reason string) {
	m.invalidSpans.WithLabelValues(reason).Inc()
}

// Registry returns the registry the metrics live in
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the current metrics in the text exposition format, for
// the node exporter textfile collector.
func (m *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

type noop struct{}

func (noop) ObserveMerge(time.Duration, int, int) {}
func (noop) IncEntity(string, string)             {}
func (noop) IncInvalidSpan(string)                {}

// Noop returns a Recorder that discards everything.
func Noop() Recorder {
	return noop{}
}
