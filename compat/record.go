package compat

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Record is one compatibility observation taken from the dataset
type Record struct {
	Drugs          []string       `json:"drugs"`
	Diluent        string         `json:"diluent"`
	Classification Classification `json:"classification"`
	Qualifiers     []string       `json:"qualifiers"`
	ReferenceIDs   []string       `json:"reference_ids"`
	key            string
}

// NewRecord builds a record and derives its combination key from drugs.
// Empty drug names are dropped from the display list.
func NewRecord(drugs []string, diluent string, classification Classification, qualifiers, referenceIDs string) Record {
	display := make([]string, 0, len(drugs))
	for _, d := range drugs {
		if Normalize(d) != "" {
			display = append(display, strings.TrimSpace(d))
		}
	}

	return Record{
		Drugs:          display,
		Diluent:        diluent,
		Classification: classification,
		Qualifiers:     Tokenize(qualifiers),
		ReferenceIDs:   Tokenize(referenceIDs),
		key:            CombinationKey(display),
	}
}

// Key returns the combination key derived from the record's drugs
func (r Record) Key() string {
	return r.key
}

// clone returns r with its slices copied
func (r Record) clone() Record {
	r.Drugs = slices.Clone(r.Drugs)
	r.Qualifiers = slices.Clone(r.Qualifiers)
	r.ReferenceIDs = slices.Clone(r.ReferenceIDs)
	return r
}

// DiluentSummary is the conservative outcome for one diluent of a query
type DiluentSummary struct {
	Diluent        string         `json:"diluent"`
	Classification Classification `json:"classification"`
	Qualifiers     []string       `json:"qualifiers"`
	References     []string       `json:"references"`
}

// stringSet keeps insertion-independent unique values
type stringSet map[string]struct{}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sortIDs(out)
	return out
}

// sortIDs orders values numerically when both sides are integers, lexically otherwise
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
}
