// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"piimerge/internal/detector"
	"piimerge/internal/formatters"

	"github.com/fatih/color"
)

const maxTextWidth = 30

// Formatter implements text-based output formatting
type Formatter struct{}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// palette holds the colors of one Format call
type palette map[string]*color.Color

func newPalette(noColor bool) palette {
	p := palette{
		"green":   color.New(color.FgGreen),
		"yellow":  color.New(color.FgYellow),
		"red":     color.New(color.FgRed),
		"cyan":    color.New(color.FgCyan),
		"magenta": color.New(color.FgMagenta),
		"blue":    color.New(color.FgBlue),
		"white":   color.New(color.FgWhite, color.Bold),
	}
	if noColor {
		for _, c := range p {
			c.DisableColor()
		}
	}
	return p
}

func (f *Formatter) Format(docs []formatters.Document, options formatters.FormatterOptions) (string, error) {
	colors := newPalette(options.NoColor)

	filtered := make([]formatters.Document, 0, len(docs))
	total := 0
	for _, doc := range docs {
		doc.Entities = formatters.FilterByConfidence(doc.Entities, options)
		total += len(doc.Entities)
		filtered = append(filtered, doc)
	}

	var builder strings.Builder
	if total == 0 {
		builder.WriteString("No entities found.\n")
		f.appendWarnings(&builder, filtered, colors)
		return builder.String(), nil
	}

	showDoc := len(docs) > 1
	if options.Verbose {
		for _, doc := range filtered {
			for _, e := range doc.Entities {
				f.appendDetailedEntity(&builder, doc.ID, e, colors)
			}
		}
	} else {
		width := textColumnWidth(filtered, options)
		f.appendHeaders(&builder, width, showDoc, colors)
		for _, doc := range filtered {
			for _, e := range doc.Entities {
				f.appendSummaryLine(&builder, doc.ID, e, width, showDoc, options, colors)
			}
		}
	}

	f.appendWarnings(&builder, filtered, colors)
	colors["white"].Fprintf(&builder, "\n%d entities in %d document(s)\n", total, len(docs))
	return builder.String(), nil
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, width int, showDoc bool, colors palette) {
	header := fmt.Sprintf("%-8s %-24s %-8s %-13s %-8s %-*s", "LEVEL", "LABEL", "CONF%", "SPAN", "SOURCE", width, "TEXT")
	if showDoc {
		header += " DOCUMENT"
	}
	colors["white"].Fprintln(builder, strings.TrimRight(header, " "))
	colors["white"].Fprintln(builder, strings.Repeat("-", len(strings.TrimRight(header, " "))))
}

// textColumnWidth sizes the text column, capped for readability
func textColumnWidth(docs []formatters.Document, options formatters.FormatterOptions) int {
	width := len("[REDACTED]")
	if !options.ShowText {
		return width
	}
	for _, doc := range docs {
		for _, e := range doc.Entities {
			width = max(width, len([]rune(flatten(e.Text))))
		}
	}
	return min(width, maxTextWidth)
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, docID string, e detector.Entity, width int, showDoc bool, options formatters.FormatterOptions, colors palette) {
	level := formatters.ConfidenceLevel(e.Confidence)
	levelColor := colors["green"]
	switch level {
	case "HIGH":
		levelColor = colors["red"]
	case "MEDIUM":
		levelColor = colors["yellow"]
	}

	label := e.Label
	if len(label) > 24 {
		label = label[:21] + "..."
	}

	text := "[REDACTED]"
	if options.ShowText {
		text = truncate(flatten(e.Text), width)
	}
	if pad := width - len([]rune(text)); pad > 0 {
		text += strings.Repeat(" ", pad)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s",
		levelColor.Sprintf("[%-6s]", level),
		colors["cyan"].Sprintf("%-24s", label),
		colors["blue"].Sprintf("%7.2f%%", e.Confidence*100),
		colors["magenta"].Sprintf("%-13s", fmt.Sprintf("[%d,%d)", e.Start, e.End)),
		colors["green"].Sprintf("%-8s", e.Source),
		text)
	if showDoc {
		builder.WriteString(" " + colors["white"].Sprint(docID))
	}
	builder.WriteString("\n")
}

// appendDetailedEntity adds detailed entity information to the string builder
func (f *Formatter) appendDetailedEntity(builder *strings.Builder, docID string, e detector.Entity, colors palette) {
	colors["white"].Fprintf(builder, "=== Entity Details ===\n")
	if docID != "" {
		fmt.Fprintf(builder, "Document:   %s\n", docID)
	}
	fmt.Fprintf(builder, "Text:       %s\n", colors["cyan"].Sprint(e.Text))
	fmt.Fprintf(builder, "Label:      %s\n", e.Label)
	fmt.Fprintf(builder, "Span:       [%d, %d)\n", e.Start, e.End)
	fmt.Fprintf(builder, "Confidence: %s (%.4f)\n", formatters.ConfidenceLevel(e.Confidence), e.Confidence)
	if e.Source != "" {
		fmt.Fprintf(builder, "Source:     %s\n", e.Source)
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendWarnings(builder *strings.Builder, docs []formatters.Document, colors palette) {
	for _, doc := range docs {
		for _, w := range doc.Warnings {
			prefix := "warning"
			if doc.ID != "" {
				prefix += " (" + doc.ID + ")"
			}
			colors["yellow"].Fprintf(builder, "%s: %s\n", prefix, w)
		}
	}
}

func flatten(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
