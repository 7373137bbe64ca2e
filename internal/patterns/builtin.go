// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

// Priorities of the built-in catalogue. Structured identifiers with
// checksums outrank free-form shapes that could swallow them.
const (
	PriorityIdentifier = 10 // SSN, credit card
	PriorityDate       = 9
	PriorityContact    = 9 // email, URL, MRN
	PriorityPhone      = 8
	PriorityNetwork    = 7
	PriorityAddress    = 7
	PriorityNPI        = 6
	PriorityBarePhone  = 5
	PriorityPostcode   = 4
)

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var dateContextWords = []string{
	"dob", "d.o.b.", "date of birth", "birth date", "birthdate", "born", "birth",
	"admitted", "admission", "discharged", "discharge", "deceased", "died", "death",
	"visit", "seen on", "date",
}

var phoneContextWords = []string{
	"phone", "tel", "telephone", "cell", "mobile", "fax", "call", "contact", "ph",
}

// englishSpecs is the universal base catalogue.
var englishSpecs = []Spec{
	// Identifiers
	{
		Name:         "ssn",
		Regex:        `\b\d{3}-\d{2}-\d{4}\b|\b\d{3} \d{2} \d{4}\b`,
		EntityType:   "ssn",
		Priority:     PriorityIdentifier,
		BaseScore:    0.4,
		ContextWords: []string{"ssn", "ss#", "social security", "social security number", "social"},
		ContextBoost: 0.45,
		Validator:    "ssn",
	},
	{
		Name:         "credit_card",
		Regex:        `\b(?:\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}(?:\d{3})?|\d{4}[- ]?\d{6}[- ]?\d{5})\b`,
		EntityType:   "credit_card",
		Priority:     PriorityIdentifier,
		BaseScore:    0.5,
		ContextWords: []string{"credit card", "card", "visa", "mastercard", "amex", "discover", "cc"},
		ContextBoost: 0.35,
		Validator:    "credit_card",
	},

	// Dates
	{
		Name:         "date_slash",
		Regex:        `\b\d{1,2}/\d{1,2}/\d{2,4}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.6,
		ContextWords: dateContextWords,
		ContextBoost: 0.3,
	},
	{
		Name:         "date_iso",
		Regex:        `\b\d{4}-\d{1,2}-\d{1,2}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.6,
		ContextWords: dateContextWords,
		ContextBoost: 0.3,
	},
	{
		Name:         "date_dash",
		Regex:        `\b\d{1,2}-\d{1,2}-\d{4}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.6,
		ContextWords: dateContextWords,
		ContextBoost: 0.3,
	},
	{
		Name:         "date_dot",
		Regex:        `\b\d{1,2}\.\d{1,2}\.\d{4}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.5,
		ContextWords: dateContextWords,
		ContextBoost: 0.3,
	},
	{
		Name:         "date_month_day_year",
		Regex:        `\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.7,
		ContextWords: dateContextWords,
		ContextBoost: 0.25,
		IgnoreCase:   true,
	},
	{
		Name:         "date_day_month_year",
		Regex:        `\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+\d{4}\b`,
		EntityType:   "date",
		Priority:     PriorityDate,
		BaseScore:    0.7,
		ContextWords: dateContextWords,
		ContextBoost: 0.25,
		IgnoreCase:   true,
	},

	// Contact and record identifiers
	{
		Name:         "email",
		Regex:        `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		EntityType:   "email",
		Priority:     PriorityContact,
		BaseScore:    0.9,
		ContextWords: []string{"email", "e-mail", "mail", "contact"},
		ContextBoost: 0.1,
	},
	{
		Name:         "url",
		Regex:        `\b(?:https?://|www\.)[^\s<>"']*[^\s<>"'.,;:!?)\]]`,
		EntityType:   "url",
		Priority:     PriorityContact,
		BaseScore:    0.8,
		ContextWords: []string{"website", "url", "link", "homepage", "profile"},
		ContextBoost: 0.15,
		IgnoreCase:   true,
	},
	{
		Name:         "medical_record_number",
		Regex:        `\b(?:mrn|medical record(?: number| no\.?| #)?|patient id|chart(?: number| no\.?)?)\s*[:#]?\s*([A-Za-z0-9-]{5,12}\d)\b`,
		EntityType:   "medical_record_number",
		Priority:     PriorityContact,
		BaseScore:    0.75,
		ContextWords: []string{"mrn", "medical record", "chart", "patient id"},
		ContextBoost: 0.15,
		Group:        1,
		IgnoreCase:   true,
	},

	// Phones
	{
		Name:         "phone_parenthesized",
		Regex:        `(?:\+?1[-. ]?)?\(\d{3}\)\s?\d{3}[-. ]\d{4}\b`,
		EntityType:   "phone_number",
		Priority:     PriorityPhone,
		BaseScore:    0.6,
		ContextWords: phoneContextWords,
		ContextBoost: 0.3,
		Validator:    "phone_us",
	},
	{
		Name:         "phone_separated",
		Regex:        `(?:\+1[-. ]?|\b1[-. ])?\b\d{3}[-. ]\d{3}[-. ]\d{4}\b`,
		EntityType:   "phone_number",
		Priority:     PriorityPhone,
		BaseScore:    0.55,
		ContextWords: phoneContextWords,
		ContextBoost: 0.3,
		Validator:    "phone_us",
	},
	{
		Name:         "phone_bare",
		Regex:        `\b\d{10}\b`,
		EntityType:   "phone_number",
		Priority:     PriorityBarePhone,
		BaseScore:    0.2,
		ContextWords: phoneContextWords,
		ContextBoost: 0.5,
		Validator:    "phone_us",
	},
	{
		Name:         "npi",
		Regex:        `\b[12]\d{9}\b`,
		EntityType:   "npi",
		Priority:     PriorityNPI,
		BaseScore:    0.15,
		ContextWords: []string{"npi", "national provider", "provider"},
		ContextBoost: 0.65,
		Validator:    "npi",
	},

	// Network identifiers
	{
		Name:         "mac_address",
		Regex:        `\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`,
		EntityType:   "mac_address",
		Priority:     PriorityPhone,
		BaseScore:    0.8,
		ContextWords: []string{"mac", "mac address", "hardware address", "ethernet"},
		ContextBoost: 0.15,
	},
	{
		Name:         "ipv4",
		Regex:        `\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`,
		EntityType:   "ip_address",
		Priority:     PriorityNetwork,
		BaseScore:    0.7,
		ContextWords: []string{"ip", "ip address", "host", "server", "address"},
		ContextBoost: 0.2,
		Validator:    "ip_address",
	},
	{
		Name:         "ipv6",
		Regex:        `\b(?:[0-9A-Fa-f]{1,4}:){7}[0-9A-Fa-f]{1,4}\b|\b(?:[0-9A-Fa-f]{1,4}:){1,6}:(?:[0-9A-Fa-f]{1,4}:){0,5}[0-9A-Fa-f]{1,4}\b`,
		EntityType:   "ip_address",
		Priority:     PriorityNetwork,
		BaseScore:    0.7,
		ContextWords: []string{"ip", "ipv6", "ip address", "host"},
		ContextBoost: 0.2,
		Validator:    "ip_address",
	},

	// Locations
	{
		Name:         "street_address",
		Regex:        `\b\d{1,5}\s+(?:[A-Z][a-z]+\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl|Terrace|Circle|Cir|Parkway|Pkwy|Highway|Hwy)\b\.?`,
		EntityType:   "street_address",
		Priority:     PriorityAddress,
		BaseScore:    0.6,
		ContextWords: []string{"address", "lives", "lives at", "resides", "residence", "home"},
		ContextBoost: 0.3,
	},
	{
		Name:         "zipcode",
		Regex:        `\b\d{5}(?:-\d{4})?\b`,
		EntityType:   "zipcode",
		Priority:     PriorityPostcode,
		BaseScore:    0.3,
		ContextWords: []string{"zip", "zip code", "zipcode", "postal", "postal code"},
		ContextBoost: 0.5,
	},
}
