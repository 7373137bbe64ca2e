// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_ASCIIOffsetsAreIdentity(t *testing.T) {
	doc := NewDocument("DOB: 01/15/1970")
	assert.Equal(t, 15, doc.Len())
	assert.Equal(t, 5, doc.CharOffset(5))
	assert.Equal(t, 5, doc.ByteOffset(5))
	assert.Equal(t, "01/15/1970", doc.Slice(5, 15))
}

func TestDocument_MultiByteOffsets(t *testing.T) {
	// "é" is two bytes, so byte and character offsets diverge after it
	doc := NewDocument("Né le 15/01/1970")
	require.Equal(t, 16, doc.Len())

	byteStart := strings.Index(doc.Text(), "15/01")
	assert.Equal(t, 7, byteStart)
	assert.Equal(t, 6, doc.CharOffset(byteStart))
	assert.Equal(t, byteStart, doc.ByteOffset(6))
	assert.Equal(t, "15/01/1970", doc.Slice(6, 16))
	assert.Equal(t, len(doc.Text()), doc.ByteOffset(doc.Len()))
}

func TestDocument_SliceClamps(t *testing.T) {
	doc := NewDocument("abc")
	assert.Equal(t, "abc", doc.Slice(-5, 99))
	assert.Equal(t, "", doc.Slice(2, 1))
}

func TestDocument_ValidSpan(t *testing.T) {
	doc := NewDocument("abcdef")
	assert.True(t, doc.ValidSpan(0, 6))
	assert.False(t, doc.ValidSpan(3, 3))
	assert.False(t, doc.ValidSpan(-1, 2))
	assert.False(t, doc.ValidSpan(2, 7))
}

func TestContextExtractor_Window(t *testing.T) {
	text := strings.Repeat("x", 50) + "MATCH" + strings.Repeat("y", 50)
	doc := NewDocument(text)

	info := NewContextExtractor().ExtractContext(doc, 50, 55)
	assert.Len(t, info.BeforeText, DefaultContextChars)
	assert.Len(t, info.AfterText, DefaultContextChars)
	assert.NotContains(t, info.BeforeText, "MATCH")

	info = NewContextExtractor().WithContextChars(3).ExtractContext(doc, 50, 55)
	assert.Equal(t, "xxx", info.BeforeText)
	assert.Equal(t, "yyy", info.AfterText)
}

func TestContextExtractor_WindowAtEdges(t *testing.T) {
	doc := NewDocument("123-45-6789")
	info := NewContextExtractor().ExtractContext(doc, 0, doc.Len())
	assert.Empty(t, info.BeforeText)
	assert.Empty(t, info.AfterText)
}

func TestContextExtractor_FindKeywords(t *testing.T) {
	ce := NewContextExtractor()
	tests := []struct {
		name     string
		before   string
		keywords []string
		want     []string
	}{
		{"case insensitive", "Patient SSN: ", []string{"ssn"}, []string{"ssn"}},
		{"respects word boundary", "Assignment number: ", []string{"ssn"}, nil},
		{"multi word keyword", "his date of birth is ", []string{"dob", "date of birth"}, []string{"date of birth"}},
		{"punctuated keyword", "c.f. ", []string{"c.f."}, []string{"c.f."}},
		{"accented keyword", "Patient né le ", []string{"né"}, []string{"né"}},
		{"no keywords", "nothing here", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ce.FindKeywords(ContextInfo{BeforeText: tt.before}, tt.keywords)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckPrediction(t *testing.T) {
	doc := NewDocument("0123456789")
	tests := []struct {
		name   string
		pred   RawPrediction
		reason SpanErrorReason
		ok     bool
	}{
		{"valid", RawPrediction{Start: 0, End: 10, EntityType: "id", Score: 0.5}, 0, true},
		{"inverted", RawPrediction{Start: 5, End: 5, EntityType: "id", Score: 0.5}, ReasonInverted, false},
		{"negative start", RawPrediction{Start: -1, End: 3, EntityType: "id", Score: 0.5}, ReasonOutOfBounds, false},
		{"past end", RawPrediction{Start: 8, End: 11, EntityType: "id", Score: 0.5}, ReasonOutOfBounds, false},
		{"nan score", RawPrediction{Start: 0, End: 3, EntityType: "id", Score: math.NaN()}, ReasonBadScore, false},
		{"score above one", RawPrediction{Start: 0, End: 3, EntityType: "id", Score: 1.5}, ReasonBadScore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPrediction(doc, 3, tt.pred)
			if tt.ok {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.reason, err.Reason)
			assert.Equal(t, 3, err.Index)
			assert.True(t, errors.Is(err, ErrInvalidSpan))
			assert.Contains(t, err.Error(), "#3")
		})
	}
}

func TestEntity_AsPrediction(t *testing.T) {
	e := Entity{Start: 2, End: 6, Text: "abcd", Label: "ssn", Confidence: 0.8}
	p := e.AsPrediction()
	assert.Equal(t, RawPrediction{Start: 2, End: 6, EntityType: "ssn", Score: 0.8}, p)
	assert.True(t, p.Overlaps(5, 9))
	assert.False(t, p.Overlaps(6, 9))
}

func TestWarnings(t *testing.T) {
	assert.Nil(t, Warnings(nil))
	assert.Equal(t, []string{"boom"}, Warnings(errors.New("boom")))

	doc := NewDocument("abc")
	err := errors.Join(
		CheckPrediction(doc, 0, RawPrediction{Start: 2, End: 1, EntityType: "x", Score: 0.5}),
		CheckPrediction(doc, 3, RawPrediction{Start: 0, End: 9, EntityType: "y", Score: 0.5}),
	)
	got := Warnings(err)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "inverted_span")
	assert.Contains(t, got[1], "prediction #3")
}
