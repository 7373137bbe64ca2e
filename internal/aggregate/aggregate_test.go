// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aggregate

import (
	"testing"

	"piimerge/internal/detector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pred(start, end int, label string, score float64) detector.RawPrediction {
	return detector.RawPrediction{Start: start, End: end, EntityType: label, Score: score}
}

func TestDominantLabel(t *testing.T) {
	tests := []struct {
		name  string
		preds []detector.RawPrediction
		want  string
	}{
		{
			name:  "majority wins",
			preds: []detector.RawPrediction{pred(0, 2, "date", 0.5), pred(2, 4, "date", 0.5), pred(4, 6, "date_of_birth", 0.99)},
			want:  "date",
		},
		{
			name:  "count tie broken by mean score",
			preds: []detector.RawPrediction{pred(0, 2, "date_of_birth", 0.8), pred(2, 4, "date", 0.9)},
			want:  "date",
		},
		{
			name:  "score tie broken by specificity",
			preds: []detector.RawPrediction{pred(0, 2, "date", 0.9), pred(2, 4, "date_of_birth", 0.9)},
			want:  "date_of_birth",
		},
		{
			name:  "specificity regardless of input order",
			preds: []detector.RawPrediction{pred(2, 4, "date_of_birth", 0.9), pred(0, 2, "date", 0.9)},
			want:  "date_of_birth",
		},
		{
			name:  "unrelated labels prefer the deeper one",
			preds: []detector.RawPrediction{pred(0, 2, "email", 0.7), pred(2, 4, "phone_number", 0.7)},
			want:  "phone_number",
		},
		{
			name:  "full tie falls back to lexicographic order",
			preds: []detector.RawPrediction{pred(0, 2, "url", 0.7), pred(2, 4, "email", 0.7)},
			want:  "email",
		},
		{
			name:  "labels are normalized before voting",
			preds: []detector.RawPrediction{pred(0, 2, "B-ZIP", 0.4), pred(2, 4, "zipcode", 0.4), pred(4, 6, "date", 0.9)},
			want:  "postcode",
		},
		{
			name: "empty group",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantLabel(tt.preds, true))
		})
	}
}

func TestDominantLabelWithoutNormalization(t *testing.T) {
	preds := []detector.RawPrediction{pred(0, 2, "zip", 0.4), pred(2, 4, "zipcode", 0.5)}
	assert.Equal(t, "zipcode", DominantLabel(preds, false))
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"national_id":     "national_id",
		"nir":             "national_id",
		"insee":           "national_id",
		"steuer_id":       "national_id",
		"steuernummer":    "national_id",
		"codice_fiscale":  "national_id",
		"postcode":        "postcode",
		"zipcode":         "postcode",
		"zip":             "postcode",
		"postal_code":     "postcode",
		"Postal Code":     "postcode",
		"B-DATE":          "date",
		"I-date_of_birth": "date_of_birth",
		"first-name":      "first_name",
		"  SSN ":          "ssn",
		"e-mail":          "e_mail",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLabel(in), in)
	}
}

func TestIsMoreSpecific(t *testing.T) {
	assert.True(t, IsMoreSpecific("nir", "national_id"))
	assert.True(t, IsMoreSpecific("steuer_id", "national_id"))
	assert.True(t, IsMoreSpecific("codice_fiscale", "national_id"))
	assert.True(t, IsMoreSpecific("nir", "id"), "transitive")
	assert.True(t, IsMoreSpecific("date_of_birth", "date"))
	assert.True(t, IsMoreSpecific("ssn", "id"))
	assert.True(t, IsMoreSpecific("street_address", "address"))
	assert.True(t, IsMoreSpecific("phone_number", "phone"))
	assert.True(t, IsMoreSpecific("first_name", "name"))
	assert.True(t, IsMoreSpecific("last_name", "name"))

	assert.False(t, IsMoreSpecific("national_id", "nir"))
	assert.False(t, IsMoreSpecific("date", "date"))
	assert.False(t, IsMoreSpecific("email", "date"))
	assert.False(t, IsMoreSpecific("unknown", "id"))
}

func TestAggregateUnitWithoutPredictions(t *testing.T) {
	doc := detector.NewDocument("DOB: 01/15/1970")
	units := []detector.SemanticUnit{{Start: 5, End: 15, EntityType: "date", PatternScore: 0.9}}

	entities, residual := Aggregate(doc, units, nil, DefaultOptions())
	require.Len(t, entities, 1)
	assert.Empty(t, residual)
	assert.Equal(t, detector.Entity{
		Start: 5, End: 15, Text: "01/15/1970", Label: "date", Confidence: 0.9, Source: detector.SourcePattern,
	}, entities[0])
}

func TestAggregateBlendsFragments(t *testing.T) {
	doc := detector.NewDocument("Patient SSN: 123-45-6789")
	units := []detector.SemanticUnit{{Start: 13, End: 24, EntityType: "ssn", PatternScore: 0.85}}
	preds := []detector.RawPrediction{
		pred(13, 16, "ssn", 0.9),
		pred(17, 19, "ssn", 0.85),
		pred(20, 24, "ssn", 0.88),
	}

	entities, residual := Aggregate(doc, units, preds, DefaultOptions())
	require.Len(t, entities, 1)
	assert.Empty(t, residual)

	e := entities[0]
	assert.Equal(t, "123-45-6789", e.Text)
	assert.Equal(t, "ssn", e.Label)
	assert.Equal(t, detector.SourceMerged, e.Source)
	mean := (0.9 + 0.85 + 0.88) / 3
	assert.InDelta(t, 0.6*mean+0.4*0.85, e.Confidence, 1e-9)
}

func TestAggregateDateOfBirthFragments(t *testing.T) {
	doc := detector.NewDocument("DOB: 01/15/1970")
	units := []detector.SemanticUnit{{Start: 5, End: 15, EntityType: "date", PatternScore: 0.9}}
	preds := []detector.RawPrediction{pred(5, 7, "date", 0.71), pred(7, 15, "date_of_birth", 0.751)}

	entities, _ := Aggregate(doc, units, preds, DefaultOptions())
	require.Len(t, entities, 1)
	assert.Equal(t, "date_of_birth", entities[0].Label)
	assert.Equal(t, 5, entities[0].Start)
	assert.Equal(t, 15, entities[0].End)
	assert.Greater(t, entities[0].Confidence, 0.71)
	assert.Less(t, entities[0].Confidence, 0.9)
}

func TestAggregateResiduals(t *testing.T) {
	doc := detector.NewDocument("Jane Doe, DOB 01/15/1970")
	units := []detector.SemanticUnit{{Start: 14, End: 24, EntityType: "date", PatternScore: 0.9}}
	preds := []detector.RawPrediction{
		pred(14, 24, "date", 0.8),
		pred(0, 4, "first_name", 0.95),
		pred(5, 8, "last_name", 0.9),
	}

	entities, residual := Aggregate(doc, units, preds, DefaultOptions())
	require.Len(t, entities, 1)
	assert.Equal(t, []detector.RawPrediction{preds[1], preds[2]}, residual)
}

func TestAggregateTrustsWholeSpanPrediction(t *testing.T) {
	doc := detector.NewDocument("Email: john@example.com")
	units := []detector.SemanticUnit{{Start: 7, End: 23, EntityType: "email", PatternScore: 0.9}}
	preds := []detector.RawPrediction{pred(7, 23, "EMAIL", 0.95)}

	entities, _ := Aggregate(doc, units, preds, DefaultOptions())
	require.Len(t, entities, 1)
	assert.Equal(t, "EMAIL", entities[0].Label)
	assert.Equal(t, 0.95, entities[0].Confidence)
	assert.Equal(t, detector.SourceModel, entities[0].Source)

	opts := DefaultOptions()
	opts.TrustWholeSpanPredictions = false
	entities, _ = Aggregate(doc, units, preds, opts)
	assert.Equal(t, "email", entities[0].Label)
	assert.InDelta(t, 0.6*0.95+0.4*0.9, entities[0].Confidence, 1e-9)
}

func TestAggregateKeepsPatternLabelWhenConfigured(t *testing.T) {
	doc := detector.NewDocument("DOB: 01/15/1970")
	units := []detector.SemanticUnit{{Start: 5, End: 15, EntityType: "date", PatternScore: 0.9}}
	preds := []detector.RawPrediction{pred(5, 7, "date_of_birth", 0.8), pred(7, 15, "date_of_birth", 0.8)}

	opts := DefaultOptions()
	opts.PreferModelLabels = false
	entities, _ := Aggregate(doc, units, preds, opts)
	require.Len(t, entities, 1)
	assert.Equal(t, "date", entities[0].Label)
}

func TestCoverage(t *testing.T) {
	u := detector.SemanticUnit{Start: 0, End: 10}
	assert.Equal(t, 0.0, Coverage(u, nil))
	assert.Equal(t, 1.0, Coverage(u, []detector.RawPrediction{pred(0, 10, "x", 1)}))
	assert.InDelta(t, 0.7, Coverage(u, []detector.RawPrediction{
		pred(8, 12, "x", 1), pred(0, 3, "x", 1), pred(2, 5, "x", 1),
	}), 1e-9)
	assert.InDelta(t, 0.5, Coverage(u, []detector.RawPrediction{pred(-3, 5, "x", 1)}), 1e-9)
}

func TestBlend(t *testing.T) {
	opts := DefaultOptions()
	assert.InDelta(t, 0.6*0.5+0.4*1.0, Blend(0.5, 1.0, 0.2, opts), 1e-9, "coverage ignored in fixed mode")

	opts.WeightingMode = WeightingCoverage
	assert.InDelta(t, 0.3*0.5+0.7*1.0, Blend(0.5, 1.0, 0.5, opts), 1e-9)
	assert.InDelta(t, 0.6*0.5+0.4*1.0, Blend(0.5, 1.0, 1.0, opts), 1e-9)
	assert.InDelta(t, 1.0, Blend(0.5, 1.0, 0.0, opts), 1e-9)

	opts = Options{ModelWeight: 1, PatternWeight: 1, WeightingMode: WeightingFixed}
	assert.Equal(t, 1.0, Blend(0.9, 0.9, 1, opts), "clamped")
}

func TestMeanScore(t *testing.T) {
	assert.Equal(t, 0.0, MeanScore(nil))
	assert.InDelta(t, 0.5, MeanScore([]detector.RawPrediction{pred(0, 1, "a", 0.2), pred(1, 2, "b", 0.8)}), 1e-9)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.ModelWeight = -0.1
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.ModelWeight, opts.PatternWeight = 0, 0
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.WeightingMode = "count"
	assert.Error(t, opts.Validate())
}
