// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"sort"
	"unicode/utf8"
)

// Document wraps source text with a character/byte offset index. Public
// offsets are character offsets; Go regexps report byte offsets, so every
// conversion goes through here.
type Document struct {
	text string

	// byte offset of each rune, plus a trailing len(text); nil for ASCII text
	runeStarts []int
	runeCount  int
}

// NewDocument indexes text for offset conversion.
func NewDocument(text string) *Document {
	d := &Document{text: text, runeCount: utf8.RuneCountInString(text)}
	if d.runeCount == len(text) {
		return d
	}

	d.runeStarts = make([]int, 0, d.runeCount+1)
	for i := range text {
		d.runeStarts = append(d.runeStarts, i)
	}
	d.runeStarts = append(d.runeStarts, len(text))
	return d
}

// Text returns the source text
func (d *Document) Text() string {
	return d.text
}

// Len returns the length of the text in characters.
func (d *Document) Len() int {
	return d.runeCount
}

// CharOffset converts a byte offset into a character offset. Offsets inside a
// multi-byte rune resolve to that rune.
func (d *Document) CharOffset(byteOffset int) int {
	if d.runeStarts == nil {
		return byteOffset
	}
	i := sort.SearchInts(d.runeStarts, byteOffset)
	if i < len(d.runeStarts) && d.runeStarts[i] == byteOffset {
		return i
	}
	return i - 1
}

// ByteOffset converts a character offset into a byte offset.
func (d *Document) ByteOffset(charOffset int) int {
	if d.runeStarts == nil {
		return charOffset
	}
	if charOffset <= 0 {
		return 0
	}
	if charOffset >= len(d.runeStarts) {
		return len(d.text)
	}
	return d.runeStarts[charOffset]
}

// Slice returns the text between two character offsets. Out-of-range offsets
// are clamped.
func (d *Document) Slice(start, end int) string {
	start = clamp(start, 0, d.runeCount)
	end = clamp(end, start, d.runeCount)
	return d.text[d.ByteOffset(start):d.ByteOffset(end)]
}

// ValidSpan reports whether [start, end) is a non-empty span inside the text.
func (d *Document) ValidSpan(start, end int) bool {
	return start >= 0 && start < end && end <= d.runeCount
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
