// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"errors"
	"fmt"
)

// SpanErrorReason classifies why a span was rejected
type SpanErrorReason int

const (
	// ReasonInverted indicates start >= end
	ReasonInverted SpanErrorReason = iota

	// ReasonOutOfBounds indicates an offset outside the text
	ReasonOutOfBounds

	// ReasonBadScore indicates a NaN score or one outside [0, 1]
	ReasonBadScore

	// ReasonEmptyMatch indicates a pattern matched the empty string
	ReasonEmptyMatch
)

// String returns the string representation of the reason
func (r SpanErrorReason) String() string {
	switch r {
	case ReasonInverted:
		return "inverted_span"
	case ReasonOutOfBounds:
		return "out_of_bounds"
	case ReasonBadScore:
		return "bad_score"
	case ReasonEmptyMatch:
		return "empty_match"
	default:
		return "unknown"
	}
}

// ErrInvalidSpan is matched by every *InvalidSpanError via errors.Is.
var ErrInvalidSpan = errors.New("invalid span")

// InvalidSpanError names a prediction or pattern match that was dropped
// because its offsets (or score) make no sense for the text. It is always
// recoverable: the offending item is skipped and processing continues.
type InvalidSpanError struct {
	Reason SpanErrorReason

	// Index is the position of the prediction in the caller's input, or -1
	// for pattern matches
	Index int

	Prediction RawPrediction

	// Pattern names the catalogue entry for pattern matches
	Pattern string

	// TextLength is the document length in characters
	TextLength int
}

// Error implements the error interface
func (e *InvalidSpanError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("invalid span [%s] from pattern %q: [%d, %d)",
			e.Reason, e.Pattern, e.Prediction.Start, e.Prediction.End)
	}
	return fmt.Sprintf("invalid span [%s] in prediction #%d (%s [%d, %d) score=%g, text length %d)",
		e.Reason, e.Index, e.Prediction.EntityType, e.Prediction.Start, e.Prediction.End,
		e.Prediction.Score, e.TextLength)
}

// Is lets errors.Is(err, ErrInvalidSpan) match
func (e *InvalidSpanError) Is(target error) bool {
	return target == ErrInvalidSpan
}

// CheckPrediction validates a prediction against the document. It returns nil
// for well-formed predictions.
func CheckPrediction(doc *Document, index int, p RawPrediction) *InvalidSpanError {
	newErr := func(reason SpanErrorReason) *InvalidSpanError {
		return &InvalidSpanError{Reason: reason, Index: index, Prediction: p, TextLength: doc.Len()}
	}

	switch {
	case p.Start >= p.End:
		return newErr(ReasonInverted)
	case p.Start < 0 || p.End > doc.Len():
		return newErr(ReasonOutOfBounds)
	case p.Score != p.Score || p.Score < 0 || p.Score > 1:
		return newErr(ReasonBadScore)
	}
	return nil
}

// Warnings flattens an error returned by a merge into one message per
// dropped item. It returns nil for a nil error.
func Warnings(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(joined.Unwrap()))
	for _, e := range joined.Unwrap() {
		out = append(out, e.Error())
	}
	return out
}
