// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

// npiPrefix is the ISO card issuer prefix prepended to an NPI before the
// Luhn check (80840 = health applications, United States).
const npiPrefix = "80840"

// Luhn reports whether the digits in text pass the Luhn checksum. Spaces and
// dashes are ignored; any other non-digit fails.
func Luhn(text string) bool {
	digits, ok := strictDigits(text)
	if !ok || len(digits) < 2 {
		return false
	}
	return luhnCheck(digits)
}

// CreditCard checks card length (13-19 digits) and the Luhn checksum.
func CreditCard(text string) bool {
	digits, ok := strictDigits(text)
	if !ok || len(digits) < 13 || len(digits) > 19 {
		return false
	}
	return luhnCheck(digits)
}

// NPI validates a ten-digit US National Provider Identifier.
func NPI(text string) bool {
	digits, ok := strictDigits(text)
	if !ok || len(digits) != 10 {
		return false
	}
	return luhnCheck(npiPrefix + digits)
}

func luhnCheck(number string) bool {
	sum := 0
	isDouble := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')

		if isDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isDouble = !isDouble
	}

	return sum%10 == 0
}
