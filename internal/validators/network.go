// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import "net/netip"

// IPAddress reports whether text parses as an IPv4 or IPv6 address.
func IPAddress(text string) bool {
	_, err := netip.ParseAddr(text)
	return err == nil
}
