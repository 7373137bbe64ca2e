// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode"
)

// DefaultContextChars is the number of characters inspected on each side of a
// match when looking for corroborating keywords.
const DefaultContextChars = 40

// ContextInfo stores the text surrounding a match
type ContextInfo struct {
	BeforeText string
	AfterText  string

	// Keywords found near the match
	Keywords []string
}

// ContextExtractor extracts a fixed-size character window around a span
type ContextExtractor struct {
	// Number of characters before and after the match to consider
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: DefaultContextChars,
	}
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// ExtractContext returns the text within ContextChars characters of [start, end).
// The span itself is excluded.
func (ce *ContextExtractor) ExtractContext(doc *Document, start, end int) ContextInfo {
	chars := max(ce.ContextChars, 0)
	return ContextInfo{
		BeforeText: doc.Slice(max(0, start-chars), start),
		AfterText:  doc.Slice(end, min(doc.Len(), end+chars)),
	}
}

// FindKeywords returns every keyword that occurs as a whole word in the
// context, compared case-insensitively. Keywords keep their given order.
func (ce *ContextExtractor) FindKeywords(info ContextInfo, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	before := []rune(strings.ToLower(info.BeforeText))
	after := []rune(strings.ToLower(info.AfterText))

	var found []string
	for _, kw := range keywords {
		needle := []rune(strings.ToLower(kw))
		if containsWord(before, needle) || containsWord(after, needle) {
			found = append(found, kw)
		}
	}
	return found
}

// containsWord finds needle in haystack where the characters on either side
// of the occurrence are not letters or digits ("ssn" must not hit "assignment").
func containsWord(haystack, needle []rune) bool {
	n := len(needle)
	if n == 0 || n > len(haystack) {
		return false
	}
	for i := 0; i+n <= len(haystack); i++ {
		if !runesEqual(haystack[i:i+n], needle) {
			continue
		}
		if i > 0 && isWordRune(haystack[i-1]) && isWordRune(needle[0]) {
			continue
		}
		if i+n < len(haystack) && isWordRune(haystack[i+n]) && isWordRune(needle[n-1]) {
			continue
		}
		return true
	}
	return false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
