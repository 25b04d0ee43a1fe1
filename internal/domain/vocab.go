package domain

import (
	"fmt"
	"strings"
)

// Vocabulary is a fixed controlled-value set for a categorical field.
type Vocabulary map[string]struct{}

// NewVocabulary builds a vocabulary from its allowed terms.
func NewVocabulary(terms ...string) Vocabulary {
	v := make(Vocabulary, len(terms))
	for _, t := range terms {
		v[t] = struct{}{}
	}
	return v
}

// ResproutOrgans is the controlled vocabulary for the organ a plant
// resprouts from after fire.
var ResproutOrgans = NewVocabulary(
	"Epicormic",
	"Apical",
	"Lignotuber",
	"Basal",
	"Tuber",
	"Tussock",
	"Short rhizome",
	"Long rhizome or root sucker",
	"Stolon",
	"None",
)

// SeedbankTypes is the controlled vocabulary for seedbank persistence.
var SeedbankTypes = NewVocabulary(
	"Canopy",
	"Soil-persistent",
	"Transient",
	"Non-canopy",
	"Other",
)

// Normalize validates a raw value against the vocabulary. When the value
// does not match exactly, a capitalized variant is tried before giving up.
// On failure ok is false and note holds a human-readable rejection such as
// "resprout organ written as buds"; the caller omits the field and keeps the
// note, the record is still emitted.
func (v Vocabulary) Normalize(fieldLabel, raw string) (value string, note string, ok bool) {
	if _, found := v[raw]; found {
		return raw, "", true
	}
	if c := capitalize(raw); c != raw {
		if _, found := v[c]; found {
			return c, "", true
		}
	}
	return "", fmt.Sprintf("%s written as %s", fieldLabel, raw), false
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
