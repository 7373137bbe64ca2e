// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import "sort"

// Supported catalogue languages (ISO 639-1).
const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
	LanguageGerman  = "de"
	LanguageItalian = "it"
	LanguageSpanish = "es"
)

// languageSpecs holds the language-specific additions to englishSpecs.
// English itself has none.
var languageSpecs = map[string][]Spec{
	LanguageEnglish: nil,
	LanguageFrench:  frenchSpecs,
	LanguageGerman:  germanSpecs,
	LanguageItalian: italianSpecs,
	LanguageSpanish: spanishSpecs,
}

// SupportedLanguages returns the language codes accepted by ForLanguage.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(languageSpecs))
	for lang := range languageSpecs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Several local formats start with '+' or '0', which \b cannot anchor, and
// RE2 has no lookbehind: those patterns match a leading non-word rune (or
// start of text) outside capture group 1. RE2's \b is ASCII-only, so
// patterns that may start or end on an accented letter use \p classes
// instead of word boundaries.

var frenchSpecs = []Spec{
	{
		Name:  "fr_date_slash",
		Regex: `\b\d{1,2}/\d{1,2}/\d{2,4}\b`, EntityType: "date",
		Priority: 9, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"né", "née", "naissance", "date de naissance", "dob", "décès", "décédé", "admis", "sorti"},
	},
	{
		Name:  "fr_date_month",
		Regex: `\b\d{1,2}\s+(?:janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+\d{4}\b`, EntityType: "date",
		Priority: 8, BaseScore: 0.7, ContextBoost: 0.25, IgnoreCase: true,
		ContextWords: []string{"né", "née", "naissance", "date de naissance", "décès", "admis", "sorti"},
	},
	{
		Name:  "fr_phone",
		Regex: `(?:^|[^\w])((?:\+33\s?|0)[1-9](?:[\s.-]?\d{2}){4})\b`, EntityType: "phone_number", Group: 1,
		Priority: 8, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"téléphone", "tél", "portable", "mobile", "numéro", "appeler", "contact", "fax"},
	},
	{
		Name:  "fr_nir",
		Regex: `\b[12]\s?\d{2}\s?\d{2}\s?\d{2}\s?\d{3}\s?\d{3}\s?\d{2}\b`, EntityType: "national_id",
		Priority: 10, BaseScore: 0.4, ContextBoost: 0.45, Validator: "french_nir",
		ContextWords: []string{"nir", "insee", "sécurité sociale", "numéro de sécurité"},
	},
	{
		Name:  "fr_street_address",
		Regex: `\b\d{1,5},?\s+(?i:rue|boulevard|bd|avenue|av|place|impasse|allée|chemin|passage|quai)\s+(?:(?:de|du|des|la|le|les|d'|l')\s*)*\p{Lu}[\p{L}'-]+(?:\s+\p{Lu}[\p{L}'-]+)*`, EntityType: "street_address",
		Priority: 7, BaseScore: 0.7, ContextBoost: 0.2,
		ContextWords: []string{"adresse", "domicile", "réside", "habite", "situé"},
	},
	{
		Name:  "fr_postcode",
		Regex: `\b\d{5}\b`, EntityType: "postcode",
		Priority: 6, BaseScore: 0.3, ContextBoost: 0.5,
		ContextWords: []string{"code postal", "cp", "cedex"},
	},
}

var germanSpecs = []Spec{
	{
		Name:  "de_date_dot",
		Regex: `\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`, EntityType: "date",
		Priority: 9, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"Geburtsdatum", "geboren", "geb", "verstorben", "aufgenommen", "entlassen", "Datum"},
	},
	{
		Name:  "de_date_month",
		Regex: `\b\d{1,2}\.?\s+(?:Januar|Februar|März|April|Mai|Juni|Juli|August|September|Oktober|November|Dezember)\s+\d{4}\b`, EntityType: "date",
		Priority: 8, BaseScore: 0.7, ContextBoost: 0.25, IgnoreCase: true,
		ContextWords: []string{"Geburtsdatum", "geboren", "geb", "verstorben", "aufgenommen", "entlassen"},
	},
	{
		Name:  "de_phone",
		Regex: `(?:^|[^\w])((?:\+49\s?|0)\d{2,4}[\s/-]?\d{3,8})\b`, EntityType: "phone_number", Group: 1,
		Priority: 8, BaseScore: 0.5, ContextBoost: 0.35,
		ContextWords: []string{"Telefon", "Tel", "Handy", "Mobil", "Fax", "Rufnummer", "Nummer", "anrufen", "Kontakt"},
	},
	{
		Name:  "de_steuer_id",
		Regex: `\b\d{11}\b`, EntityType: "national_id",
		Priority: 9, BaseScore: 0.2, ContextBoost: 0.6, Validator: "german_steuer_id",
		ContextWords: []string{"Steuer-ID", "Steueridentifikationsnummer", "Steuernummer", "IdNr", "Identifikationsnummer"},
	},
	{
		Name:  "de_street_address",
		Regex: `(?:^|[^\p{L}])(\p{Lu}[\p{Ll}ß]+(?:straße|strasse|str\.|weg|platz|allee|gasse|ring|damm)\s+\d{1,5}[a-z]?)\b`, EntityType: "street_address", Group: 1,
		Priority: 7, BaseScore: 0.7, ContextBoost: 0.2,
		ContextWords: []string{"Adresse", "Anschrift", "wohnhaft", "wohnt"},
	},
	{
		Name:  "de_postcode",
		Regex: `\b\d{5}\b`, EntityType: "postcode",
		Priority: 6, BaseScore: 0.3, ContextBoost: 0.5,
		ContextWords: []string{"PLZ", "Postleitzahl"},
	},
}

var italianSpecs = []Spec{
	{
		Name:  "it_date_slash",
		Regex: `\b\d{1,2}/\d{1,2}/\d{2,4}\b`, EntityType: "date",
		Priority: 9, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"nato", "nata", "nascita", "data di nascita", "decesso", "deceduto", "ricovero", "dimissione"},
	},
	{
		Name:  "it_date_month",
		Regex: `\b\d{1,2}\s+(?:gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre)\s+\d{4}\b`, EntityType: "date",
		Priority: 8, BaseScore: 0.7, ContextBoost: 0.25, IgnoreCase: true,
		ContextWords: []string{"nato", "nata", "nascita", "data di nascita", "decesso", "ricovero", "dimissione"},
	},
	{
		Name:  "it_phone",
		Regex: `(?:^|[^\w])((?:\+39\s?)?3\d{2}[\s.-]?\d{3}[\s.-]?\d{4})\b`, EntityType: "phone_number", Group: 1,
		Priority: 8, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"telefono", "tel", "cellulare", "mobile", "numero", "chiamare", "contatto", "fax"},
	},
	{
		Name:  "it_codice_fiscale",
		Regex: `\b[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]\b`, EntityType: "national_id",
		Priority: 10, BaseScore: 0.7, ContextBoost: 0.25, Validator: "italian_codice_fiscale",
		ContextWords: []string{"codice fiscale", "cf", "c.f."},
	},
	{
		Name:  "it_street_address",
		Regex: `\b(?i:via|piazza|corso|viale|vicolo|largo|piazzale|lungomare)\s+(?:(?:di|del|della|dei|degli|delle)\s+)*\p{Lu}[\p{L}'-]+(?:\s+\p{Lu}[\p{L}'-]+)*(?:\s*,?\s*\d{1,5}\b)?`, EntityType: "street_address",
		Priority: 7, BaseScore: 0.7, ContextBoost: 0.2,
		ContextWords: []string{"indirizzo", "domicilio", "residente", "risiede", "abitazione"},
	},
	{
		Name:  "it_postcode",
		Regex: `\b\d{5}\b`, EntityType: "postcode",
		Priority: 6, BaseScore: 0.3, ContextBoost: 0.5,
		ContextWords: []string{"CAP", "codice postale"},
	},
}

var spanishSpecs = []Spec{
	{
		Name:  "es_date_slash",
		Regex: `\b\d{1,2}/\d{1,2}/\d{2,4}\b`, EntityType: "date",
		Priority: 9, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"nacido", "nacida", "nacimiento", "fecha de nacimiento", "fallecimiento", "fallecido", "ingreso", "alta"},
	},
	{
		Name:  "es_date_month",
		Regex: `\b\d{1,2}\s+de\s+(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\s+de\s+\d{4}\b`, EntityType: "date",
		Priority: 8, BaseScore: 0.7, ContextBoost: 0.25, IgnoreCase: true,
		ContextWords: []string{"nacido", "nacida", "nacimiento", "fecha de nacimiento", "fallecimiento", "ingreso", "alta"},
	},
	{
		Name:  "es_phone",
		Regex: `(?:^|[^\w])((?:\+34\s?)?[679]\d{2}[\s.-]?\d{3}[\s.-]?\d{3})\b`, EntityType: "phone_number", Group: 1,
		Priority: 8, BaseScore: 0.6, ContextBoost: 0.3,
		ContextWords: []string{"teléfono", "tel", "móvil", "celular", "número", "llamar", "contacto", "fax"},
	},
	{
		Name:  "es_dni",
		Regex: `\b\d{8}[A-Za-z]\b`, EntityType: "national_id",
		Priority: 10, BaseScore: 0.5, ContextBoost: 0.4, Validator: "spanish_dni",
		ContextWords: []string{"dni", "documento nacional", "identidad", "documento de identidad"},
	},
	{
		Name:  "es_nie",
		Regex: `\b[XYZxyz]\d{7}[A-Za-z]\b`, EntityType: "national_id",
		Priority: 10, BaseScore: 0.5, ContextBoost: 0.4, Validator: "spanish_nie",
		ContextWords: []string{"nie", "número de identidad de extranjero", "extranjero", "residencia"},
	},
	{
		Name:  "es_street_address",
		Regex: `\b(?i:calle|c/|avenida|avda\.?|paseo|plaza|camino|carretera|ronda|travesía|glorieta)\s+(?:(?:de|del|la|las|los|el)\s+)*\p{Lu}[\p{L}'-]+(?:\s+\p{Lu}[\p{L}'-]+)*(?:\s*,?\s*\d{1,5}\b)?`, EntityType: "street_address",
		Priority: 7, BaseScore: 0.7, ContextBoost: 0.2,
		ContextWords: []string{"dirección", "domicilio", "residente", "reside", "ubicación"},
	},
	{
		Name:  "es_postcode",
		Regex: `\b(?:0[1-9]|[1-4]\d|5[0-2])\d{3}\b`, EntityType: "postcode",
		Priority: 6, BaseScore: 0.3, ContextBoost: 0.5,
		ContextWords: []string{"código postal", "cp"},
	},
}
