// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"fmt"
	"sort"
	"strings"
)

// Catalogue is an ordered, read-only set of patterns, sorted by descending
// priority with declaration order kept among equal priorities. Build it once
// and share it; nothing mutates it after construction.
type Catalogue struct {
	patterns []Pattern
	language string
}

// New compiles exactly the given specs, with no built-in patterns.
func New(specs []Spec) (*Catalogue, error) {
	compiled := make([]Pattern, 0, len(specs))
	for i, spec := range specs {
		p, err := Compile(spec, i)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return &Catalogue{patterns: compiled}, nil
}

// Build returns the built-in English catalogue followed by any custom specs.
func Build(custom ...Spec) (*Catalogue, error) {
	return ForLanguage(LanguageEnglish, custom...)
}

// ForLanguage returns the catalogue for an ISO 639-1 language code. English
// patterns (email, URL, IP, ...) are universal and always included; the
// language's own dates, phones, national IDs and addresses are declared
// first so they win ties against the English base. Custom specs come last.
func ForLanguage(lang string, custom ...Spec) (*Catalogue, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = LanguageEnglish
	}
	local, ok := languageSpecs[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(SupportedLanguages(), ", "))
	}

	specs := make([]Spec, 0, len(local)+len(englishSpecs)+len(custom))
	if lang != LanguageEnglish {
		specs = append(specs, local...)
	}
	specs = append(specs, englishSpecs...)
	specs = append(specs, custom...)

	c, err := New(specs)
	if err != nil {
		return nil, err
	}
	c.language = lang
	return c, nil
}

// Patterns returns the patterns in resolution order.
func (c *Catalogue) Patterns() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Len returns the number of patterns
func (c *Catalogue) Len() int {
	return len(c.patterns)
}

// Language returns the catalogue language, or "" for catalogues built with New.
func (c *Catalogue) Language() string {
	return c.language
}

// PriorityGroups splits the catalogue into runs of equal priority, highest first.
func (c *Catalogue) PriorityGroups() [][]Pattern {
	var groups [][]Pattern
	for i := 0; i < len(c.patterns); {
		j := i + 1
		for j < len(c.patterns) && c.patterns[j].Priority == c.patterns[i].Priority {
			j++
		}
		groups = append(groups, append([]Pattern(nil), c.patterns[i:j]...))
		i = j
	}
	return groups
}

// EntityTypes lists the distinct entity types the catalogue can produce.
func (c *Catalogue) EntityTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, p := range c.patterns {
		if !seen[p.EntityType] {
			seen[p.EntityType] = true
			types = append(types, p.EntityType)
		}
	}
	sort.Strings(types)
	return types
}
