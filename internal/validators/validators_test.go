// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSN(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123-45-6789", true},
		{"123 45 6789", true},
		{"123456789", true},
		{"000-45-6789", false}, // area 000
		{"000-12-3456", false},
		{"666-45-6789", false}, // area 666
		{"900-45-6789", false}, // area 9xx
		{"999-45-6789", false},
		{"123-00-6789", false}, // group 00
		{"123-45-0000", false}, // serial 0000
		{"123-45-678", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SSN(tt.input))
		})
	}
}

func TestLuhnAndCreditCard(t *testing.T) {
	assert.True(t, Luhn("4532015112830366"))
	assert.True(t, Luhn("6011111111111117"))
	assert.True(t, Luhn("4532 0151 1283 0366"))
	assert.False(t, Luhn("4532015112830367"))
	assert.False(t, Luhn("1234567890123456"))
	assert.False(t, Luhn("4532x15112830366"))
	assert.False(t, Luhn("7"))

	assert.True(t, CreditCard("4111-1111-1111-1111"))
	assert.False(t, CreditCard("0000000000"), "too short for a card even though Luhn passes")
}

func TestNPI(t *testing.T) {
	assert.True(t, NPI("1234567893"))
	assert.False(t, NPI("1234567890"))
	assert.False(t, NPI("123456789"))
	assert.False(t, NPI("12345678931"))
}

func TestPhoneUS(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(555) 123-4567", true},
		{"555-123-4567", true},
		{"5551234567", true},
		{"1-555-123-4567", true},
		{"+1 555 123 4567", true},
		{"(055) 123-4567", false},
		{"(155) 123-4567", false},
		{"555-023-4567", false},
		{"555-123-456", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, PhoneUS(tt.input))
		})
	}
}

func TestFrenchNIR(t *testing.T) {
	assert.True(t, FrenchNIR("185057800608491"))
	assert.True(t, FrenchNIR("1 85 05 78 006 084 91"))
	assert.True(t, FrenchNIR("269029934173285"))
	assert.False(t, FrenchNIR("185057800608492"), "wrong key")
	assert.False(t, FrenchNIR("385057800608491"), "sex digit must be 1 or 2")
	assert.False(t, FrenchNIR("18505780060849"))
}

func TestGermanSteuerID(t *testing.T) {
	assert.True(t, GermanSteuerID("86095742719"))
	assert.False(t, GermanSteuerID("12345678901"), "no repeated digit")
	assert.False(t, GermanSteuerID("06095742719"), "leading zero")
	assert.False(t, GermanSteuerID("11223456789"), "two repeated digits")
	assert.False(t, GermanSteuerID("8609574271"))
}

func TestItalianCodiceFiscale(t *testing.T) {
	assert.True(t, ItalianCodiceFiscale("RSSMRA85M01H501Z"))
	assert.True(t, ItalianCodiceFiscale("rssmra85m01h501z"))
	assert.False(t, ItalianCodiceFiscale("RSSMRA85M01H501"))
	assert.False(t, ItalianCodiceFiscale("RSSMRA8XM01H501Z"))
}

func TestSpanishDNIAndNIE(t *testing.T) {
	assert.True(t, SpanishDNI("12345678Z"))
	assert.True(t, SpanishDNI("12345678z"))
	assert.False(t, SpanishDNI("12345678A"))
	assert.False(t, SpanishDNI("1234567Z"))

	assert.True(t, SpanishNIE("X1234567L"))
	assert.False(t, SpanishNIE("X1234567A"))
	assert.False(t, SpanishNIE("A1234567L"))
}

func TestValidatorsAreTotal(t *testing.T) {
	inputs := []string{"", " ", "-", "é", "12345678901234567890123", "\x00\xff", "XXXXXXXXX"}
	for _, name := range Names() {
		fn, ok := Lookup(name)
		require.True(t, ok)
		for _, in := range inputs {
			assert.NotPanics(t, func() { fn(in) }, "%s(%q)", name, in)
		}
	}
}

func TestLookup(t *testing.T) {
	fn, ok := Lookup(" SSN ")
	require.True(t, ok)
	assert.True(t, fn("123-45-6789"))

	_, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Contains(t, Names(), "npi")
}

func TestIPAddress(t *testing.T) {
	assert.True(t, IPAddress("192.168.1.10"))
	assert.True(t, IPAddress("2001:db8::1"))
	assert.False(t, IPAddress("999.1.1.1"))
	assert.False(t, IPAddress("10.0.0"))
}
