// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

// SSN checks the structure of a US Social Security Number. Separators are
// ignored. Area numbers 000, 666 and 900-999 were never issued, nor were
// group 00 or serial 0000.
func SSN(text string) bool {
	digits := Digits(text)
	if len(digits) != 9 {
		return false
	}

	area, group, serial := digits[0:3], digits[3:5], digits[5:9]
	if !isValidAreaNumber(area) {
		return false
	}
	return group != "00" && serial != "0000"
}

func isValidAreaNumber(area string) bool {
	if area == "000" || area == "666" {
		return false
	}
	return area[0] != '9'
}
