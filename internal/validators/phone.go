// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

// PhoneUS checks NANP shape: ten digits (optionally led by country code 1)
// where the area code does not start with 0 or 1 and the exchange does not
// start with 0.
func PhoneUS(text string) bool {
	digits := Digits(text)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return false
	}
	return digits[0] >= '2' && digits[3] != '0'
}
