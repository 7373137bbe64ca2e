// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"strings"
	"testing"

	"piimerge/internal/detector"
	"piimerge/internal/patterns"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T) *patterns.Catalogue {
	t.Helper()
	c, err := patterns.Build()
	require.NoError(t, err)
	return c
}

func mustNew(t *testing.T, specs ...patterns.Spec) *patterns.Catalogue {
	t.Helper()
	c, err := patterns.New(specs)
	require.NoError(t, err)
	return c
}

func TestHigherPriorityWins(t *testing.T) {
	cat := mustNew(t,
		patterns.Spec{Name: "number", Regex: `\d+(?:-\d+)*`, EntityType: "number", Priority: 5, BaseScore: 0.3},
		patterns.Spec{Name: "ssn", Regex: `\d{3}-\d{2}-\d{4}`, EntityType: "ssn", Priority: 10, BaseScore: 0.8},
	)
	units := Scan(detector.NewDocument("id 123-45-6789"), cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, "ssn", units[0].EntityType)
	assert.Equal(t, 3, units[0].Start)
	assert.Equal(t, 14, units[0].End)
}

func TestEqualPriorityPrefersLongestMatch(t *testing.T) {
	cat := mustNew(t,
		patterns.Spec{Name: "short", Regex: `\d{2}/\d{2}`, EntityType: "short", Priority: 5, BaseScore: 0.5},
		patterns.Spec{Name: "long", Regex: `\d{2}/\d{2}/\d{4}`, EntityType: "long", Priority: 5, BaseScore: 0.5},
	)
	units := Scan(detector.NewDocument("01/15/1970"), cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, "long", units[0].EntityType)
	assert.Equal(t, "long", units[0].Pattern)
}

func TestEqualLengthPrefersDeclarationOrder(t *testing.T) {
	cat := mustNew(t,
		patterns.Spec{Name: "first", Regex: `\d{4}`, EntityType: "a", Priority: 5, BaseScore: 0.5},
		patterns.Spec{Name: "second", Regex: `\d{4}`, EntityType: "b", Priority: 5, BaseScore: 0.5},
	)
	units := Scan(detector.NewDocument("pin 1234"), cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, "a", units[0].EntityType)
}

func TestValidatorFailureLowersScoreButKeepsUnit(t *testing.T) {
	cat := mustBuild(t)
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"valid with context", "SSN: 123-45-6789", 0.85},
		{"invalid with context", "SSN: 000-12-3456", 0.6},
		{"valid without context", "Ref 123-45-6789", 0.4},
		{"invalid without context", "Ref 666-12-3456", 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := Scan(detector.NewDocument(tt.text), cat, DefaultOptions())
			require.Len(t, units, 1)
			assert.Equal(t, "ssn", units[0].EntityType)
			assert.InDelta(t, tt.want, units[0].PatternScore, 1e-9)
		})
	}
}

func TestPenaltyFloorsAtZero(t *testing.T) {
	cat := mustNew(t, patterns.Spec{
		Regex: `\d{3}-\d{2}-\d{4}`, EntityType: "ssn", BaseScore: 0.1, Validator: "ssn",
	})
	units := Scan(detector.NewDocument("000-12-3456"), cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, 0.0, units[0].PatternScore)
}

func TestContextBoost(t *testing.T) {
	cat := mustNew(t, patterns.Spec{
		Name: "code", Regex: `\b\d{4}\b`, EntityType: "id", BaseScore: 0.5,
		ContextWords: []string{"id"}, ContextBoost: 0.3,
	})
	opts := DefaultOptions()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"keyword before", "ID: 1234", 0.8},
		{"keyword after", "1234 is my id", 0.8},
		{"keyword inside another word", "valid 1234", 0.5},
		{"keyword outside window", "id" + strings.Repeat(" ", 45) + "1234", 0.5},
		{"no keyword", "pin 1234", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := Scan(detector.NewDocument(tt.text), cat, opts)
			require.Len(t, units, 1)
			assert.InDelta(t, tt.want, units[0].PatternScore, 1e-9)
		})
	}
}

func TestContextBoostCapsAtOne(t *testing.T) {
	cat := mustNew(t, patterns.Spec{
		Regex: `\d{4}`, EntityType: "id", BaseScore: 0.9,
		ContextWords: []string{"id"}, ContextBoost: 0.5,
	})
	units := Scan(detector.NewDocument("id 1234"), cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, 1.0, units[0].PatternScore)
}

func TestUnitsNeverOverlap(t *testing.T) {
	text := "Patient Jane, DOB: 01/15/1970, SSN 123-45-6789, phone (555) 123-4567, " +
		"email jane@example.com, lives at 42 Oak Street, Springfield 02139. " +
		"Card 4532 0151 1283 0366, host 10.0.0.1, mac 00:1A:2B:3C:4D:5E, NPI 1234567893."
	doc := detector.NewDocument(text)
	units := Scan(doc, mustBuild(t), DefaultOptions())
	require.NotEmpty(t, units)

	for i, u := range units {
		assert.True(t, doc.ValidSpan(u.Start, u.End), "unit %d in bounds", i)
		assert.GreaterOrEqual(t, u.PatternScore, 0.0)
		assert.LessOrEqual(t, u.PatternScore, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, units[i-1].End, u.Start, "units %d and %d overlap", i-1, i)
		}
	}

	byType := make(map[string]string)
	for _, u := range units {
		byType[u.EntityType] = doc.Slice(u.Start, u.End)
	}
	assert.Equal(t, "01/15/1970", byType["date"])
	assert.Equal(t, "123-45-6789", byType["ssn"])
	assert.Equal(t, "(555) 123-4567", byType["phone_number"])
	assert.Equal(t, "jane@example.com", byType["email"])
	assert.Equal(t, "4532 0151 1283 0366", byType["credit_card"])
	assert.Equal(t, "10.0.0.1", byType["ip_address"])
	assert.Equal(t, "1234567893", byType["npi"])
}

func TestRoundTripCharacterOffsets(t *testing.T) {
	cat, err := patterns.ForLanguage(patterns.LanguageFrench)
	require.NoError(t, err)

	doc := detector.NewDocument("Né le 15/01/1970 à Paris")
	units := Scan(doc, cat, DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, 6, units[0].Start)
	assert.Equal(t, 16, units[0].End)
	assert.Equal(t, "15/01/1970", doc.Slice(units[0].Start, units[0].End))
	assert.InDelta(t, 0.9, units[0].PatternScore, 1e-9, "né is a context word")
}

func TestCaptureGroupSpan(t *testing.T) {
	doc := detector.NewDocument("MRN: 00123456")
	units := Scan(doc, mustBuild(t), DefaultOptions())
	require.Len(t, units, 1)
	assert.Equal(t, "medical_record_number", units[0].EntityType)
	assert.Equal(t, "00123456", doc.Slice(units[0].Start, units[0].End))
}

func TestEmptyMatchesAreSkipped(t *testing.T) {
	cat := mustNew(t, patterns.Spec{Name: "xs", Regex: `x*`, EntityType: "x", BaseScore: 0.5})
	units, skipped := New(cat, DefaultOptions()).Scan(detector.NewDocument("axxb"))
	require.Len(t, units, 1)
	assert.Equal(t, 1, units[0].Start)
	assert.Equal(t, 3, units[0].End)

	require.NotEmpty(t, skipped)
	assert.Equal(t, detector.ReasonEmptyMatch, skipped[0].Reason)
	assert.Equal(t, "xs", skipped[0].Pattern)
	assert.ErrorIs(t, skipped[0], detector.ErrInvalidSpan)
}

func TestNoMatches(t *testing.T) {
	units := Scan(detector.NewDocument("nothing to see here"), mustBuild(t), DefaultOptions())
	assert.Empty(t, units)

	units = Scan(detector.NewDocument(""), mustBuild(t), DefaultOptions())
	assert.Empty(t, units)
}

func TestNegativeOptionsClampToZero(t *testing.T) {
	s := New(mustBuild(t), Options{ContextWindow: -5, ValidatorPenalty: -1})
	assert.Equal(t, 0, s.opts.ContextWindow)
	assert.Equal(t, 0.0, s.opts.ValidatorPenalty)
}

func TestClaimedSet(t *testing.T) {
	var c claimedSet
	assert.True(t, c.claim(10, 20))
	assert.True(t, c.claim(0, 5))
	assert.True(t, c.claim(20, 25), "half-open intervals may touch")
	assert.True(t, c.claim(5, 10))
	assert.False(t, c.claim(19, 21))
	assert.False(t, c.claim(0, 100))
	assert.False(t, c.claim(3, 4))
	assert.Equal(t, 4, c.len())

	for i := 1; i < len(c.spans); i++ {
		assert.LessOrEqual(t, c.spans[i-1].end, c.spans[i].start)
	}
}
