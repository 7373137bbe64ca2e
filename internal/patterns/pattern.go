// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns defines the regex catalogue that locates whole PII spans
// (semantic units) independently of model tokenization.
package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"piimerge/internal/validators"
)

// Spec is the declarative form of a pattern, as written in Go code or in a
// YAML pattern file.
type Spec struct {
	Name         string   `yaml:"name"`
	Regex        string   `yaml:"regex"`
	EntityType   string   `yaml:"entity_type"`
	Priority     int      `yaml:"priority"`
	BaseScore    float64  `yaml:"base_score"`
	ContextWords []string `yaml:"context_words,omitempty"`
	ContextBoost float64  `yaml:"context_boost,omitempty"`

	// Validator names a registered validator (see validators.Names)
	Validator string `yaml:"validator,omitempty"`

	// ValidatorFunc supplies a validator directly; it wins over Validator
	ValidatorFunc validators.Func `yaml:"-"`

	// Group selects a capture group as the unit span; 0 is the whole match.
	// RE2 has no lookbehind, so leading context is matched outside the group.
	Group int `yaml:"group,omitempty"`

	IgnoreCase bool `yaml:"ignore_case,omitempty"`
}

// Pattern is a compiled, immutable catalogue entry.
type Pattern struct {
	Name         string
	Regex        *regexp.Regexp
	EntityType   string
	Priority     int
	BaseScore    float64
	ContextWords []string
	ContextBoost float64
	Validator    validators.Func
	Group        int

	// Order is the declaration position within the catalogue; it breaks
	// priority and length ties.
	Order int
}

// Validate runs the pattern's validator. Patterns without one always pass.
func (p Pattern) Validate(text string) bool {
	if p.Validator == nil {
		return true
	}
	return p.Validator(text)
}

// PatternCompilationError reports a pattern that cannot be compiled. It is
// fatal at catalogue-build time.
type PatternCompilationError struct {
	Name       string
	EntityType string
	Regex      string
	Err        error
}

// Error implements the error interface
func (e *PatternCompilationError) Error() string {
	return fmt.Sprintf("pattern %q (entity type %q) failed to compile: %v", e.Name, e.EntityType, e.Err)
}

// Unwrap returns the underlying cause
func (e *PatternCompilationError) Unwrap() error {
	return e.Err
}

var (
	errMissingEntityType = errors.New("entity_type is required")
	errEmptyRegex        = errors.New("regex is empty")
)

// Compile turns a Spec into a Pattern. order records the declaration position.
func Compile(spec Spec, order int) (Pattern, error) {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("%s#%d", spec.EntityType, order)
	}
	fail := func(err error) (Pattern, error) {
		return Pattern{}, &PatternCompilationError{Name: name, EntityType: spec.EntityType, Regex: spec.Regex, Err: err}
	}

	entityType := strings.TrimSpace(spec.EntityType)
	if entityType == "" {
		return fail(errMissingEntityType)
	}
	if strings.TrimSpace(spec.Regex) == "" {
		return fail(errEmptyRegex)
	}
	if spec.BaseScore < 0 || spec.BaseScore > 1 {
		return fail(fmt.Errorf("base_score %g outside [0, 1]", spec.BaseScore))
	}
	if spec.ContextBoost < 0 || spec.ContextBoost > 1 {
		return fail(fmt.Errorf("context_boost %g outside [0, 1]", spec.ContextBoost))
	}

	expr := spec.Regex
	if spec.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fail(err)
	}
	if spec.Group < 0 || spec.Group > re.NumSubexp() {
		return fail(fmt.Errorf("group %d out of range, regex has %d capture groups", spec.Group, re.NumSubexp()))
	}

	validator := spec.ValidatorFunc
	if validator == nil && spec.Validator != "" {
		fn, ok := validators.Lookup(spec.Validator)
		if !ok {
			return fail(fmt.Errorf("unknown validator %q (available: %s)",
				spec.Validator, strings.Join(validators.Names(), ", ")))
		}
		validator = fn
	}

	words := make([]string, 0, len(spec.ContextWords))
	for _, w := range spec.ContextWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	return Pattern{
		Name:         name,
		Regex:        re,
		EntityType:   entityType,
		Priority:     spec.Priority,
		BaseScore:    spec.BaseScore,
		ContextWords: words,
		ContextBoost: spec.ContextBoost,
		Validator:    validator,
		Group:        spec.Group,
		Order:        order,
	}, nil
}
