package compat

import "strings"

// Classification is a compatibility code as published in the dataset
type Classification string

const (
	// ClassificationAnecdotal is the weakest evidence level
	ClassificationAnecdotal Classification = "1"
	ClassificationCode2     Classification = "2"
	// ClassificationIncompatible is the most restrictive code
	ClassificationIncompatible Classification = "3"
	// ClassificationNoData is never stored, it tells the caller nothing matched
	ClassificationNoData Classification = "4"
	// ClassificationNotRecommended is the code assigned by the override rule
	ClassificationNotRecommended Classification = "5"
	ClassificationCode6          Classification = "6"
	ClassificationCode7          Classification = "7"
)

// precedence ranks codes from most permissive (1) to most restrictive (6).
// Codes missing here rank 0 and lose against any ranked code.
var precedence = map[Classification]int{
	ClassificationIncompatible:   6,
	ClassificationNotRecommended: 5,
	ClassificationCode2:          4,
	ClassificationCode7:          3,
	ClassificationCode6:          2,
	ClassificationAnecdotal:      1,
}

// ParseClassification trims the raw field. ok is false for empty values and
// for the no-data sentinel, which cannot appear in a stored record.
func ParseClassification(raw string) (c Classification, ok bool) {
	c = Classification(strings.TrimSpace(raw))
	if c == "" || c == ClassificationNoData {
		return c, false
	}
	return c, true
}

// Rank returns the precedence of c, 0 when the code is not in the table
func (c Classification) Rank() int {
	return precedence[c]
}

// Known reports whether c belongs to the closed set of storable codes
func (c Classification) Known() bool {
	_, ok := precedence[c]
	return ok
}

func (c Classification) String() string {
	return string(c)
}

// Worst returns the most restrictive code. When no code is ranked, the first
// one is kept. The result does not depend on input order unless two unranked
// codes compete.
func Worst(codes ...Classification) Classification {
	if len(codes) == 0 {
		return ""
	}
	worst := codes[0]
	for _, c := range codes[1:] {
		if c.Rank() > worst.Rank() {
			worst = c
		}
	}
	return worst
}

// KnownClassifications lists storable codes from most to least restrictive
func KnownClassifications() []Classification {
	return []Classification{
		ClassificationIncompatible,
		ClassificationNotRecommended,
		ClassificationCode2,
		ClassificationCode7,
		ClassificationCode6,
		ClassificationAnecdotal,
	}
}
