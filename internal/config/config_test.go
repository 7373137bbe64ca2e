// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"piimerge/internal/aggregate"
	"piimerge/internal/detector"
	"piimerge/internal/merge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, "all", cfg.Defaults.ConfidenceLevels)
	assert.Equal(t, "en", cfg.Defaults.Language)
	assert.Equal(t, 0.6, cfg.Scoring.ModelWeight)
	assert.Equal(t, 0.4, cfg.Scoring.PatternWeight)
	assert.Equal(t, 40, cfg.Scoring.ContextWindow)
	assert.Equal(t, 0.25, cfg.Scoring.ValidatorPenalty)
	assert.True(t, cfg.Scoring.TrustWholeSpanPredictions)
	assert.True(t, cfg.Scoring.PreferModelLabels)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Contains(t, cfg.Profiles, "strict")
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "piimerge.yaml", `
defaults:
  format: json
  language: fr
scoring:
  model_weight: 0.7
  weighting_mode: coverage
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Defaults.Format)
	assert.Equal(t, "fr", cfg.Defaults.Language)
	assert.Equal(t, "all", cfg.Defaults.ConfidenceLevels)
	assert.Equal(t, 0.7, cfg.Scoring.ModelWeight)
	assert.Equal(t, 0.4, cfg.Scoring.PatternWeight)
	assert.Equal(t, aggregate.WeightingCoverage, cfg.Scoring.WeightingMode)
	assert.True(t, cfg.Scoring.TrustWholeSpanPredictions)
	assert.Contains(t, cfg.Profiles, "strict", "built-in profiles survive")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        ":::invalid yaml:::",
		"negative weight": "scoring:\n  model_weight: -0.1\n",
		"zero weights":    "scoring:\n  model_weight: 0\n  pattern_weight: 0\n",
		"bad mode":        "scoring:\n  weighting_mode: magic\n",
		"bad penalty":     "scoring:\n  validator_penalty: 2\n",
		"bad window":      "scoring:\n  context_window: -1\n",
		"bad language":    "defaults:\n  language: xx\n",
		"bad workers":     "defaults:\n  workers: -2\n",
		"bad patterns":    "patterns:\n  mode: merge\n",
		"empty replace":   "patterns:\n  mode: replace\n",
	}
	dir := t.TempDir()
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, dir, "c.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_RootMustBeMapping(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(writeFile(t, dir, "scalar.yaml", ":::invalid yaml:::"))
	assert.ErrorContains(t, err, "expected a mapping at the top level")

	_, err = LoadConfig(writeFile(t, dir, "list.yaml", "- format: json\n"))
	assert.Error(t, err)

	cfg, err := LoadConfig(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err, "an empty file keeps the defaults")
	assert.Equal(t, 0.6, cfg.Scoring.ModelWeight)

	cfg, err = LoadConfig(writeFile(t, dir, "comment.yaml", "# nothing configured yet\n"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Defaults.Format)
}

func TestLoadConfigOrDefault(t *testing.T) {
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Defaults.Format)

	bad := writeFile(t, t.TempDir(), "bad.yaml", ":::invalid yaml:::")
	cfg = LoadConfigOrDefault(bad)
	require.NotNil(t, cfg, "fallback to defaults on parse error")
	assert.Equal(t, 0.6, cfg.Scoring.ModelWeight)
}

func TestFindConfigFile_Env(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "defaults:\n  format: csv\n")
	t.Setenv("PIIMERGE_CONFIG", path)
	assert.Equal(t, path, FindConfigFile())
	assert.Equal(t, "csv", LoadConfigOrDefault("").Defaults.Format)
}

func TestProfiles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "piimerge.yaml", `
profiles:
  clinical:
    description: clinical notes
    format: yaml
    language: de
    verbose: true
    scoring:
      model_weight: 0.8
      pattern_weight: 0.2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"clinical", "strict"}, cfg.ListProfiles())
	assert.Nil(t, cfg.GetProfile("missing"))

	require.NoError(t, cfg.ApplyProfile("clinical"))
	assert.Equal(t, "yaml", cfg.Defaults.Format)
	assert.Equal(t, "de", cfg.Defaults.Language)
	assert.True(t, cfg.Defaults.Verbose)
	assert.Equal(t, 0.8, cfg.Scoring.ModelWeight)
	assert.Equal(t, 0.2, cfg.Scoring.PatternWeight)
	assert.Equal(t, 40, cfg.Scoring.ContextWindow, "unset override keeps default")

	require.NoError(t, cfg.ApplyProfile("strict"))
	assert.Equal(t, "high", cfg.Defaults.ConfidenceLevels)
	assert.False(t, cfg.Scoring.PreferModelLabels)
	assert.True(t, cfg.Defaults.NoColor)

	assert.Error(t, cfg.ApplyProfile("missing"))
}

func TestProfileNormalizeLabelsOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "piimerge.yaml", `
profiles:
  raw-labels:
    scoring:
      normalize_labels: false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.Scoring.NormalizeLabels)

	require.NoError(t, cfg.ApplyProfile("raw-labels"))
	assert.False(t, cfg.Scoring.NormalizeLabels)
	assert.True(t, cfg.Scoring.PreferModelLabels, "unset override keeps default")

	mergeCfg, err := cfg.MergeConfig(nil, nil)
	require.NoError(t, err)
	assert.False(t, mergeCfg.Aggregate.NormalizeLabels)
}

func TestCatalogueFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.yaml", `
patterns:
  - name: employee_id
    regex: 'EMP-\d{6}'
    entity_type: employee_id
    priority: 8
    base_score: 0.7
`)
	path := writeFile(t, dir, "piimerge.yaml", `
patterns:
  file: extra.yaml
  custom:
    - name: badge
      regex: 'BDG\d{4}'
      entity_type: badge_id
      priority: 3
      base_score: 0.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extra.yaml"), cfg.Patterns.File)

	cat, err := cfg.Catalogue()
	require.NoError(t, err)
	assert.Contains(t, cat.EntityTypes(), "employee_id")
	assert.Contains(t, cat.EntityTypes(), "badge_id")
	assert.Contains(t, cat.EntityTypes(), "ssn", "append mode keeps built-ins")
}

func TestCatalogueReplaceMode(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, t.TempDir(), "c.yaml", `
patterns:
  mode: replace
  custom:
    - regex: 'EMP-\d{6}'
      entity_type: employee_id
      priority: 8
      base_score: 0.7
`))
	require.NoError(t, err)

	cat, err := cfg.Catalogue()
	require.NoError(t, err)
	assert.Equal(t, []string{"employee_id"}, cat.EntityTypes())
}

func TestMergeConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Scoring.ModelWeight = 0.5
	cfg.Scoring.PatternWeight = 0.5

	mc, err := cfg.MergeConfig(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, mc.Aggregate.ModelWeight)
	assert.Equal(t, 40, mc.Scanner.ContextWindow)

	engine, err := merge.New(mc)
	require.NoError(t, err)
	entities, err := engine.Merge("DOB: 01/15/1970", []detector.RawPrediction{
		{Start: 5, End: 7, EntityType: "date_of_birth", Score: 0.7},
	})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.InDelta(t, 0.5*0.7+0.5*0.9, entities[0].Confidence, 1e-9)
}
