// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aggregate

import (
	"sort"
	"strings"

	"piimerge/internal/detector"
)

// broader maps an entity type to the next broader type. It is the fixed
// specificity hierarchy used to break label ties; nothing is inferred.
var broader = map[string]string{
	"date_of_birth":  "date",
	"date_of_death":  "date",
	"admission_date": "date",
	"discharge_date": "date",

	"ssn":                   "id",
	"national_id":           "id",
	"medical_record_number": "id",
	"npi":                   "id",

	"nir":            "national_id",
	"insee":          "national_id",
	"steuer_id":      "national_id",
	"steuernummer":   "national_id",
	"codice_fiscale": "national_id",
	"dni":            "national_id",
	"nie":            "national_id",

	"street_address": "address",
	"postcode":       "address",
	"city":           "address",

	"phone_number": "phone",
	"fax_number":   "phone",

	"first_name": "name",
	"last_name":  "name",
}

// aliases collapses spelling variants onto one canonical label.
var aliases = map[string]string{
	"zip":         "postcode",
	"zipcode":     "postcode",
	"zip_code":    "postcode",
	"postal_code": "postcode",

	"nir":            "national_id",
	"insee":          "national_id",
	"steuer_id":      "national_id",
	"steuernummer":   "national_id",
	"codice_fiscale": "national_id",
	"dni":            "national_id",
	"nie":            "national_id",

	"dob":           "date_of_birth",
	"birthdate":     "date_of_birth",
	"telephone":     "phone_number",
	"email_address": "email",
}

// NormalizeLabel canonicalizes a model label: lower case, BIO tag prefix
// removed, spaces and hyphens folded to underscores, known variants
// collapsed ("zipcode" and "zip" become "postcode", "nir" becomes
// "national_id").
func NormalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) > 2 && l[1] == '-' && (l[0] == 'b' || l[0] == 'i') {
		l = l[2:]
	}
	l = strings.NewReplacer(" ", "_", "-", "_").Replace(l)
	if canonical, ok := aliases[l]; ok {
		return canonical
	}
	return l
}

// KnownLabels lists every canonical label the specificity hierarchy and the
// alias table mention, sorted.
func KnownLabels() []string {
	seen := make(map[string]bool)
	for child, parent := range broader {
		seen[child] = true
		seen[parent] = true
	}
	for _, canonical := range aliases {
		seen[canonical] = true
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// IsMoreSpecific reports whether label a is a strict descendant of label b in
// the specificity hierarchy. Labels are compared as given.
func IsMoreSpecific(a, b string) bool {
	for parent, ok := broader[a]; ok; parent, ok = broader[parent] {
		if parent == b {
			return true
		}
	}
	return false
}

// depth is the number of ancestors a label has in the hierarchy.
func depth(label string) int {
	d := 0
	for parent, ok := broader[label]; ok; parent, ok = broader[parent] {
		d++
	}
	return d
}

// labelStats accumulates the votes for one label.
type labelStats struct {
	count int
	sum   float64
}

func (s labelStats) mean() float64 {
	return s.sum / float64(s.count)
}

// DominantLabel picks the label of a group of predictions. The most frequent
// label wins; ties go to the highest mean score of the label's own
// predictions, then to the more specific label, then to the
// lexicographically smallest one. When normalize is set labels are
// canonicalized with NormalizeLabel before counting. It returns "" for an
// empty group.
func DominantLabel(preds []detector.RawPrediction, normalize bool) string {
	stats := make(map[string]labelStats)
	for _, p := range preds {
		label := p.EntityType
		if normalize {
			label = NormalizeLabel(label)
		}
		s := stats[label]
		s.count++
		s.sum += p.Score
		stats[label] = s
	}
	if len(stats) == 0 {
		return ""
	}

	labels := make([]string, 0, len(stats))
	for label := range stats {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if beats(label, stats[label], best, stats[best]) {
			best = label
		}
	}
	return best
}

// beats reports whether candidate a outranks the current best b. Labels are
// visited in sorted order, so returning false on a full tie keeps the
// lexicographically smaller label.
func beats(a string, sa labelStats, b string, sb labelStats) bool {
	if sa.count != sb.count {
		return sa.count > sb.count
	}
	if ma, mb := sa.mean(), sb.mean(); ma != mb {
		return ma > mb
	}
	if IsMoreSpecific(a, b) {
		return true
	}
	if IsMoreSpecific(b, a) {
		return false
	}
	return depth(a) > depth(b)
}
