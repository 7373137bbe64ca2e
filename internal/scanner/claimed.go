// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import "sort"

// claimedSet is a sorted list of disjoint half-open intervals.
type claimedSet struct {
	spans []span
}

type span struct {
	start, end int
}

// overlaps reports whether [start, end) intersects any claimed interval.
func (c *claimedSet) overlaps(start, end int) bool {
	// first interval ending after start
	i := sort.Search(len(c.spans), func(i int) bool { return c.spans[i].end > start })
	return i < len(c.spans) && c.spans[i].start < end
}

// claim adds [start, end) unless it overlaps a claimed interval, and reports
// whether it was added.
func (c *claimedSet) claim(start, end int) bool {
	if c.overlaps(start, end) {
		return false
	}
	i := sort.Search(len(c.spans), func(i int) bool { return c.spans[i].start >= end })
	c.spans = append(c.spans, span{})
	copy(c.spans[i+1:], c.spans[i:])
	c.spans[i] = span{start: start, end: end}
	return true
}

func (c *claimedSet) len() int {
	return len(c.spans)
}
