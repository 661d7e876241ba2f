package compat

import (
	"sort"
	"strings"
)

// KeySeparator joins normalized drug names inside a combination key
const KeySeparator = " | "

// Normalize canonicalizes a drug, diluent or class name for comparison:
// surrounding whitespace is trimmed, the text is lower-cased and internal
// whitespace runs collapse to a single space. Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CombinationKey builds the order-independent identity of a drug set.
// Empty names are dropped, so {"A", "B", ""} and {"b", " a "} share a key.
func CombinationKey(drugs []string) string {
	names := normalizedNames(drugs)
	sort.Strings(names)
	return strings.Join(names, KeySeparator)
}

// normalizedNames returns the normalized, non-empty names in input order
func normalizedNames(drugs []string) []string {
	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		if n := Normalize(d); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// isTokenDelimiter reports whether r separates values in multi-valued fields.
// The set is space, tab, comma and pipe.
func isTokenDelimiter(r rune) bool {
	return r == ' ' || r == '\t' || r == ',' || r == '|'
}

// Tokenize splits a multi-valued qualifier or reference field on runs of
// delimiters, discarding empty tokens. Callers must treat the result as a set.
func Tokenize(field string) []string {
	return strings.FieldsFunc(field, isTokenDelimiter)
}
