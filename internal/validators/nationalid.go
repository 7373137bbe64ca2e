// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var codiceFiscaleShape = regexp.MustCompile(`^[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]$`)

// dniLetters maps number mod 23 to the Spanish DNI/NIE check letter
const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// FrenchNIR validates a French social security number (NIR/INSEE): 15 digits,
// sex digit 1 or 2, key = 97 - (first 13 digits mod 97).
func FrenchNIR(text string) bool {
	digits := Digits(text)
	if len(digits) != 15 {
		return false
	}
	if digits[0] != '1' && digits[0] != '2' {
		return false
	}

	number, err := strconv.ParseInt(digits[:13], 10, 64)
	if err != nil {
		return false
	}
	key, err := strconv.Atoi(digits[13:])
	if err != nil {
		return false
	}
	return key == 97-int(number%97)
}

// GermanSteuerID validates a German tax identification number: 11 digits, no
// leading zero, and among the first ten digits exactly one digit repeats.
func GermanSteuerID(text string) bool {
	digits := Digits(text)
	if len(digits) != 11 || digits[0] == '0' {
		return false
	}

	var counts [10]int
	for i := 0; i < 10; i++ {
		counts[digits[i]-'0']++
	}
	repeated := 0
	for _, c := range counts {
		if c >= 2 {
			repeated++
		}
	}
	return repeated == 1
}

// ItalianCodiceFiscale checks the 16-character codice fiscale layout.
func ItalianCodiceFiscale(text string) bool {
	cleaned := strings.ToUpper(stripSpace(text))
	return len(cleaned) == 16 && codiceFiscaleShape.MatchString(cleaned)
}

// SpanishDNI validates 8 digits followed by the mod-23 check letter.
func SpanishDNI(text string) bool {
	cleaned := strings.ToUpper(stripSpace(text))
	if len(cleaned) != 9 {
		return false
	}
	return dniCheck(cleaned[:8], cleaned[8])
}

// SpanishNIE validates an X/Y/Z prefix, 7 digits and the mod-23 check letter.
// The prefix stands for a leading 0, 1 or 2 respectively.
func SpanishNIE(text string) bool {
	cleaned := strings.ToUpper(stripSpace(text))
	if len(cleaned) != 9 {
		return false
	}

	prefix := strings.IndexByte("XYZ", cleaned[0])
	if prefix < 0 {
		return false
	}
	return dniCheck(strconv.Itoa(prefix)+cleaned[1:8], cleaned[8])
}

func dniCheck(number string, letter byte) bool {
	if _, ok := strictDigits(number); !ok || len(number) != 8 {
		return false
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return false
	}
	return dniLetters[n%23] == letter
}

func stripSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
