// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"piimerge/internal/aggregate"
	"piimerge/internal/merge"
	"piimerge/internal/metrics"
	"piimerge/internal/observability"
	"piimerge/internal/patterns"
	"piimerge/internal/scanner"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format           string `yaml:"format"`
		ConfidenceLevels string `yaml:"confidence_levels"`
		Language         string `yaml:"language"`
		Workers          int    `yaml:"workers"`
		Verbose          bool   `yaml:"verbose"`
		Debug            bool   `yaml:"debug"`
		NoColor          bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Scoring controls how units and predictions are combined
	Scoring ScoringConfig `yaml:"scoring"`

	// Patterns customizes the catalogue
	Patterns struct {
		File   string          `yaml:"file"`
		Mode   string          `yaml:"mode"`
		Custom []patterns.Spec `yaml:"custom"`
	} `yaml:"patterns"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Profiles for different merging scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// ScoringConfig mirrors the engine's scoring knobs
type ScoringConfig struct {
	ModelWeight               float64 `yaml:"model_weight"`
	PatternWeight             float64 `yaml:"pattern_weight"`
	WeightingMode             string  `yaml:"weighting_mode"`
	ContextWindow             int     `yaml:"context_window"`
	ValidatorPenalty          float64 `yaml:"validator_penalty"`
	TrustWholeSpanPredictions bool    `yaml:"trust_whole_span_predictions"`
	PreferModelLabels         bool    `yaml:"prefer_model_labels"`
	NormalizeLabels           bool    `yaml:"normalize_labels"`
}

// Profile represents a named set of overrides. Unset fields leave the
// defaults alone.
type Profile struct {
	Description      string `yaml:"description"`
	Format           string `yaml:"format"`
	ConfidenceLevels string `yaml:"confidence_levels"`
	Language         string `yaml:"language"`
	Verbose          *bool  `yaml:"verbose"`
	NoColor          *bool  `yaml:"no_color"`

	Scoring struct {
		ModelWeight               *float64 `yaml:"model_weight"`
		PatternWeight             *float64 `yaml:"pattern_weight"`
		WeightingMode             string   `yaml:"weighting_mode"`
		ContextWindow             *int     `yaml:"context_window"`
		ValidatorPenalty          *float64 `yaml:"validator_penalty"`
		TrustWholeSpanPredictions *bool    `yaml:"trust_whole_span_predictions"`
		PreferModelLabels         *bool    `yaml:"prefer_model_labels"`
		NormalizeLabels           *bool    `yaml:"normalize_labels"`
	} `yaml:"scoring"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	// An empty or null document keeps every default
	if len(root.Content) > 0 && root.Content[0].ShortTag() != "!!null" {
		if doc := root.Content[0]; doc.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("error parsing config file: line %d: expected a mapping at the top level", doc.Line)
		}
		// Keys absent from the file keep their defaults
		if err := root.Decode(config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	// Relative pattern files are resolved against the config file
	if config.Patterns.File != "" && !filepath.IsAbs(config.Patterns.File) {
		config.Patterns.File = filepath.Join(filepath.Dir(cleanPath), config.Patterns.File)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.Language = patterns.LanguageEnglish

	agg := aggregate.DefaultOptions()
	scan := scanner.DefaultOptions()
	config.Scoring = ScoringConfig{
		ModelWeight:               agg.ModelWeight,
		PatternWeight:             agg.PatternWeight,
		WeightingMode:             agg.WeightingMode,
		ContextWindow:             scan.ContextWindow,
		ValidatorPenalty:          scan.ValidatorPenalty,
		TrustWholeSpanPredictions: agg.TrustWholeSpanPredictions,
		PreferModelLabels:         agg.PreferModelLabels,
		NormalizeLabels:           agg.NormalizeLabels,
	}

	config.Patterns.Mode = patterns.ModeAppend
	config.Logging.Level = "warn"

	noColor, preferModel := true, false
	strict := Profile{
		Description:      "Only high-confidence entities, pattern labels kept",
		ConfidenceLevels: "high",
		NoColor:          &noColor,
	}
	strict.Scoring.PreferModelLabels = &preferModel
	config.Profiles["strict"] = strict

	return config
}

// FindConfigFile looks for a configuration file in standard locations. The
// PIIMERGE_CONFIG environment variable wins over everything else.
func FindConfigFile() string {
	if env := os.Getenv("PIIMERGE_CONFIG"); env != "" && fileExists(env) {
		return env
	}

	for _, name := range []string{"piimerge.yaml", "piimerge.yml", ".piimerge.yaml", ".piimerge.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if dir, err := os.UserConfigDir(); err == nil {
		for _, name := range []string{"config.yaml", "config.yml"} {
			configFile := filepath.Join(dir, "piimerge", name)
			if fileExists(configFile) {
				return configFile
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, ".piimerge.yaml")
		if fileExists(homeConfig) {
			return homeConfig
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile onto the defaults and scoring
// settings.
func (c *Config) ApplyProfile(name string) error {
	p := c.GetProfile(name)
	if p == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}

	if p.Format != "" {
		c.Defaults.Format = p.Format
	}
	if p.ConfidenceLevels != "" {
		c.Defaults.ConfidenceLevels = p.ConfidenceLevels
	}
	if p.Language != "" {
		c.Defaults.Language = p.Language
	}
	if p.Verbose != nil {
		c.Defaults.Verbose = *p.Verbose
	}
	if p.NoColor != nil {
		c.Defaults.NoColor = *p.NoColor
	}

	s := p.Scoring
	if s.ModelWeight != nil {
		c.Scoring.ModelWeight = *s.ModelWeight
	}
	if s.PatternWeight != nil {
		c.Scoring.PatternWeight = *s.PatternWeight
	}
	if s.WeightingMode != "" {
		c.Scoring.WeightingMode = s.WeightingMode
	}
	if s.ContextWindow != nil {
		c.Scoring.ContextWindow = *s.ContextWindow
	}
	if s.ValidatorPenalty != nil {
		c.Scoring.ValidatorPenalty = *s.ValidatorPenalty
	}
	if s.TrustWholeSpanPredictions != nil {
		c.Scoring.TrustWholeSpanPredictions = *s.TrustWholeSpanPredictions
	}
	if s.PreferModelLabels != nil {
		c.Scoring.PreferModelLabels = *s.PreferModelLabels
	}
	if s.NormalizeLabels != nil {
		c.Scoring.NormalizeLabels = *s.NormalizeLabels
	}

	return ValidateConfig(c)
}

// ValidateConfig checks the values that would otherwise only fail when the
// engine is built
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := config.aggregateOptions().Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if config.Scoring.ContextWindow < 0 {
		return fmt.Errorf("scoring: context_window must be non-negative, got %d", config.Scoring.ContextWindow)
	}
	if config.Scoring.ValidatorPenalty < 0 || config.Scoring.ValidatorPenalty > 1 {
		return fmt.Errorf("scoring: validator_penalty must be within [0, 1], got %g", config.Scoring.ValidatorPenalty)
	}
	if config.Defaults.Workers < 0 {
		return fmt.Errorf("defaults: workers must be non-negative, got %d", config.Defaults.Workers)
	}

	if !supportedLanguage(config.Defaults.Language) {
		return fmt.Errorf("defaults: unsupported language %q (supported: %s)",
			config.Defaults.Language, strings.Join(patterns.SupportedLanguages(), ", "))
	}

	switch config.Patterns.Mode {
	case "", patterns.ModeAppend, patterns.ModeReplace:
	default:
		return fmt.Errorf("patterns: invalid mode %q (must be %s or %s)", config.Patterns.Mode, patterns.ModeAppend, patterns.ModeReplace)
	}
	if config.Patterns.Mode == patterns.ModeReplace && config.Patterns.File == "" && len(config.Patterns.Custom) == 0 {
		return fmt.Errorf("patterns: replace mode needs a pattern file or custom patterns")
	}

	for name, profile := range config.Profiles {
		if profile.Language != "" && !supportedLanguage(profile.Language) {
			return fmt.Errorf("profile %q: unsupported language %q", name, profile.Language)
		}
	}

	return nil
}

func supportedLanguage(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range patterns.SupportedLanguages() {
		if l == lang {
			return true
		}
	}
	return false
}

func (c *Config) aggregateOptions() aggregate.Options {
	return aggregate.Options{
		ModelWeight:               c.Scoring.ModelWeight,
		PatternWeight:             c.Scoring.PatternWeight,
		WeightingMode:             c.Scoring.WeightingMode,
		TrustWholeSpanPredictions: c.Scoring.TrustWholeSpanPredictions,
		PreferModelLabels:         c.Scoring.PreferModelLabels,
		NormalizeLabels:           c.Scoring.NormalizeLabels,
	}
}

// Catalogue builds the pattern catalogue described by the configuration:
// the language catalogue, the pattern file, and inline custom patterns.
func (c *Config) Catalogue() (*patterns.Catalogue, error) {
	pf := &patterns.File{Mode: c.Patterns.Mode}
	if c.Patterns.File != "" {
		loaded, err := patterns.LoadFile(c.Patterns.File)
		if err != nil {
			return nil, err
		}
		pf = loaded
		// An explicit replace in the config file wins over the pattern file
		if c.Patterns.Mode == patterns.ModeReplace {
			pf.Mode = patterns.ModeReplace
		}
	}
	if pf.Mode == "" {
		pf.Mode = patterns.ModeAppend
	}
	pf.Patterns = append(pf.Patterns, c.Patterns.Custom...)
	return pf.Catalogue(c.Defaults.Language)
}

// MergeConfig assembles the engine configuration. observer and recorder may
// be nil.
func (c *Config) MergeConfig(observer *observability.StandardObserver, recorder metrics.Recorder) (merge.Config, error) {
	cat, err := c.Catalogue()
	if err != nil {
		return merge.Config{}, err
	}

	cfg := merge.DefaultConfig()
	cfg.Catalogue = cat
	cfg.Scanner = scanner.Options{
		ContextWindow:    c.Scoring.ContextWindow,
		ValidatorPenalty: c.Scoring.ValidatorPenalty,
	}
	cfg.Aggregate = c.aggregateOptions()
	cfg.Observer = observer
	cfg.Metrics = recorder
	return cfg, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a missing/bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
