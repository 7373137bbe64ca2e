// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"piimerge/internal/detector"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// skippedTags carry binary or positional data that only produces noise
var skippedTags = map[exif.FieldName]bool{
	"MakerNote":                        true,
	"ThumbJPEGInterchangeFormat":       true,
	"ThumbJPEGInterchangeFormatLength": true,
}

// exifWalker collects printable EXIF tags
type exifWalker struct {
	tags map[string]string
}

// Walk implements exif.Walker
func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || skippedTags[name] {
		return nil
	}
	value := tag.String()
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			value = s
		}
	}
	if value = strings.TrimSpace(value); value != "" {
		w.tags[string(name)] = value
	}
	return nil
}

// loadImage turns EXIF metadata into one "Tag: value" line per tag, sorted by
// tag name, so owner names, serial numbers and dates can be scanned.
func loadImage(path string) ([]detector.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("no EXIF data found: %w", err)
	}

	walker := &exifWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("error reading EXIF tags: %w", err)
	}

	return []detector.Input{{Text: exifText(walker.tags)}}, nil
}

func exifText(tags map[string]string) string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, tags[name])
	}
	return b.String()
}
