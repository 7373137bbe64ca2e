// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// How custom patterns combine with the built-in catalogue.
const (
	ModeAppend  = "append"
	ModeReplace = "replace"
)

// File is a YAML custom pattern file:
//
//	mode: append
//	patterns:
//	  - name: employee_id
//	    regex: 'EMP-\d{6}'
//	    entity_type: id
//	    priority: 8
//	    base_score: 0.7
type File struct {
	Mode     string `yaml:"mode"`
	Language string `yaml:"language,omitempty"`
	Patterns []Spec `yaml:"patterns"`
}

// LoadFile reads a custom pattern file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	pf, err := ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// ReadFile parses a custom pattern file. Unknown keys are rejected so that
// a misspelt field does not silently disable a pattern.
func ReadFile(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var pf File
	if err := dec.Decode(&pf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}

	pf.Mode = strings.ToLower(strings.TrimSpace(pf.Mode))
	if pf.Mode == "" {
		pf.Mode = ModeAppend
	}
	if pf.Mode != ModeAppend && pf.Mode != ModeReplace {
		return nil, fmt.Errorf("invalid pattern mode %q (must be %s or %s)", pf.Mode, ModeAppend, ModeReplace)
	}
	return &pf, nil
}

// Catalogue builds the catalogue described by the file. In append mode the
// custom patterns follow the built-in catalogue for lang (the file's own
// language wins when set); in replace mode they are the whole catalogue.
func (pf *File) Catalogue(lang string) (*Catalogue, error) {
	if pf.Language != "" {
		lang = pf.Language
	}
	if pf.Mode == ModeReplace {
		c, err := New(pf.Patterns)
		if err != nil {
			return nil, err
		}
		c.language = strings.ToLower(strings.TrimSpace(lang))
		return c, nil
	}
	return ForLanguage(lang, pf.Patterns...)
}
