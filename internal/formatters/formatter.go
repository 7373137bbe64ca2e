// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"piimerge/internal/detector"
)

// Confidence level thresholds
const (
	HighConfidence   = 0.9
	MediumConfidence = 0.6
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // Which confidence levels to display
	Verbose         bool            // Whether to display detailed information
	NoColor         bool            // Whether to disable colored output
	ShowText        bool            // Whether human-oriented formats display the entity text
}

// Document is the merge result of one input document
type Document struct {
	ID       string
	Entities []detector.Entity

	// Warnings lists dropped predictions and other recoverable problems
	Warnings []string
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the merge results of a batch of documents
	Format(docs []Document, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export formats docs with the named formatter
func Export(format string, docs []Document, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(docs, options)
}

// ParseConfidenceLevels converts a comma-separated list of levels ("high,medium")
// or "all" into the filter map used by FormatterOptions.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		result["high"] = true
		result["medium"] = true
		result["low"] = true
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch l := strings.ToLower(strings.TrimSpace(level)); l {
		case "high", "medium", "low":
			result[l] = true
		}
	}

	return result
}

// ConfidenceLevel buckets a confidence in [0, 1]
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= HighConfidence:
		return "HIGH"
	case confidence >= MediumConfidence:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// FilterByConfidence keeps the entities whose level is enabled in options. A
// nil level map keeps everything.
func FilterByConfidence(entities []detector.Entity, options FormatterOptions) []detector.Entity {
	if options.ConfidenceLevel == nil {
		return entities
	}
	filtered := make([]detector.Entity, 0, len(entities))
	for _, e := range entities {
		if options.ConfidenceLevel[strings.ToLower(ConfidenceLevel(e.Confidence))] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
