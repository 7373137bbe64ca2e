// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"piimerge/internal/formatters"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Documents []JSONDocument `json:"documents" yaml:"documents"`
}

// JSONDocument holds the entities of one document
type JSONDocument struct {
	ID       string       `json:"id,omitempty" yaml:"id,omitempty"`
	Entities []JSONEntity `json:"entities" yaml:"entities"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// JSONEntity represents a single entity in JSON/YAML format
type JSONEntity struct {
	Start           int     `json:"start" yaml:"start"`
	End             int     `json:"end" yaml:"end"`
	Text            string  `json:"text" yaml:"text"`
	Label           string  `json:"label" yaml:"label"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string  `json:"confidence_level" yaml:"confidence_level"`
	Source          string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// ConvertToJSONFormat converts merge results to the JSON/YAML structure,
// applying the confidence filter. Source is only reported in verbose mode.
func ConvertToJSONFormat(docs []formatters.Document, options formatters.FormatterOptions) JSONResponse {
	response := JSONResponse{Documents: make([]JSONDocument, 0, len(docs))}
	for _, doc := range docs {
		entities := formatters.FilterByConfidence(doc.Entities, options)
		out := JSONDocument{
			ID:       doc.ID,
			Entities: make([]JSONEntity, 0, len(entities)),
			Warnings: doc.Warnings,
		}
		for _, e := range entities {
			je := JSONEntity{
				Start:           e.Start,
				End:             e.End,
				Text:            e.Text,
				Label:           e.Label,
				Confidence:      e.Confidence,
				ConfidenceLevel: formatters.ConfidenceLevel(e.Confidence),
			}
			if options.Verbose {
				je.Source = e.Source
			}
			out.Entities = append(out.Entities, je)
		}
		response.Documents = append(response.Documents, out)
	}
	return response
}
