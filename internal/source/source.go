// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package source loads documents to merge: text plus the model predictions
// for it. Prediction-carrying inputs come from JSON, JSON Lines or YAML;
// plain text, PDF and image metadata yield pattern-only documents.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"piimerge/internal/detector"

	"gopkg.in/yaml.v3"
)

// Input formats
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
	FormatText  = "text"
	FormatPDF   = "pdf"
	FormatImage = "image"
)

// maxLineSize bounds one JSON Lines record
const maxLineSize = 64 * 1024 * 1024

// ErrNoDocuments is returned when an input holds no documents at all
var ErrNoDocuments = errors.New("no documents found")

// batch is the envelope form of JSON and YAML inputs
type batch struct {
	Documents []detector.Input `json:"documents" yaml:"documents"`
}

// DetectFormat maps a file extension to an input format. Unknown extensions
// are read as text.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	case ".pdf":
		return FormatPDF
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return FormatImage
	default:
		return FormatText
	}
}

// Load reads the documents in one file. Documents without an ID are named
// after the file (and their position when the file holds several).
func Load(path string) ([]detector.Input, error) {
	var (
		docs []detector.Input
		err  error
	)
	switch format := DetectFormat(path); format {
	case FormatPDF:
		docs, err = loadPDF(path)
	case FormatImage:
		docs, err = loadImage(path)
	default:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, openErr)
		}
		defer f.Close()
		docs, err = Read(f, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = path
			if len(docs) > 1 {
				docs[i].ID = fmt.Sprintf("%s#%d", path, i)
			}
		}
	}
	return docs, nil
}

// LoadAll loads every path, descending into directories. Files are visited
// in lexical order.
func LoadAll(paths []string) ([]detector.Input, error) {
	var docs []detector.Input
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("path does not exist or is not accessible: %w", err)
		}
		if !info.IsDir() {
			loaded, err := Load(root)
			if err != nil {
				return nil, err
			}
			docs = append(docs, loaded...)
			continue
		}

		var files []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), ".") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
		sort.Strings(files)
		for _, path := range files {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, loaded...)
		}
	}
	return docs, nil
}

// Read parses documents from r in one of the stream formats: json, jsonl,
// yaml or text.
func Read(r io.Reader, format string) ([]detector.Input, error) {
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return decodeJSON(data)
	case FormatJSONL:
		return decodeJSONLines(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatText, "":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return []detector.Input{{Text: string(data)}}, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// decodeJSON accepts a single document, an array of documents or a
// {"documents": [...]} envelope.
func decodeJSON(data []byte) ([]detector.Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoDocuments
	}

	if data[0] == '[' {
		var docs []detector.Input
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse JSON documents: %w", err)
		}
		return docs, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	if _, ok := probe["documents"]; ok {
		var b batch
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse JSON documents: %w", err)
		}
		return b.Documents, nil
	}

	var doc detector.Input
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return []detector.Input{doc}, nil
}

func decodeJSONLines(r io.Reader) ([]detector.Input, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var docs []detector.Input
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var doc detector.Input
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// decodeYAML accepts the same shapes as decodeJSON
func decodeYAML(r io.Reader) ([]detector.Input, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return nil, ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to parse YAML documents: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, ErrNoDocuments
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var docs []detector.Input
		if err := root.Decode(&docs); err != nil {
			return nil, fmt.Errorf("failed to parse YAML documents: %w", err)
		}
		return docs, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "documents" {
				var b batch
				if err := root.Decode(&b); err != nil {
					return nil, fmt.Errorf("failed to parse YAML documents: %w", err)
				}
				return b.Documents, nil
			}
		}
		var doc detector.Input
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document: %w", err)
		}
		return []detector.Input{doc}, nil
	default:
		return nil, fmt.Errorf("unexpected YAML document shape")
	}
}
