// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"piimerge/internal/detector"
	"piimerge/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(docs []formatters.Document, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)

	headers := []string{"Document", "Label", "Confidence Level", "Confidence", "Start", "End", "Text"}
	if options.Verbose {
		headers = append(headers, "Source")
	}
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, doc := range docs {
		for _, e := range formatters.FilterByConfidence(doc.Entities, options) {
			if err := w.Write(f.createCSVRow(doc.ID, e, options)); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error formatting CSV: %w", err)
	}
	return strings.TrimSuffix(builder.String(), "\n"), nil
}

// createCSVRow creates a CSV row for an entity
func (f *Formatter) createCSVRow(docID string, e detector.Entity, options formatters.FormatterOptions) []string {
	displayText := "[REDACTED]"
	if options.ShowText {
		displayText = e.Text
	}

	row := []string{
		sanitizeFormulaInjection(docID),
		sanitizeFormulaInjection(e.Label),
		formatters.ConfidenceLevel(e.Confidence),
		strconv.FormatFloat(e.Confidence, 'f', 4, 64),
		strconv.Itoa(e.Start),
		strconv.Itoa(e.End),
		sanitizeFormulaInjection(displayText),
	}
	if options.Verbose {
		row = append(row, e.Source)
	}
	return row
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters
func sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		// Prefix with single quote to prevent formula execution
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
