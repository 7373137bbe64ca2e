// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validators holds the checksum and format checks used to raise or
// lower confidence in a pattern match. Every check is a pure, total function
// of the matched text.
package validators

import (
	"sort"
	"strings"
)

// Func validates matched text. It must never panic, whatever the input.
type Func func(text string) bool

var registry = map[string]Func{
	"ssn":                    SSN,
	"luhn":                   Luhn,
	"credit_card":            CreditCard,
	"npi":                    NPI,
	"phone_us":               PhoneUS,
	"ip_address":             IPAddress,
	"french_nir":             FrenchNIR,
	"german_steuer_id":       GermanSteuerID,
	"italian_codice_fiscale": ItalianCodiceFiscale,
	"spanish_dni":            SpanishDNI,
	"spanish_nie":            SpanishNIE,
}

// Lookup returns the validator registered under name (case-insensitive).
func Lookup(name string) (Func, bool) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Names lists the registered validator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Digits returns the ASCII digits of text, dropping everything else.
func Digits(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			sb.WriteByte(text[i])
		}
	}
	return sb.String()
}

// strictDigits drops spaces and dashes and fails on any other non-digit.
func strictDigits(text string) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == ' ' || c == '-':
		default:
			return "", false
		}
	}
	return sb.String(), true
}
