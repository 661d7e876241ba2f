package compat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCombination is wrapped by every caller-input error of Query
var ErrInvalidCombination = errors.New("invalid drug combination")

const (
	MinDrugs = 2
	MaxDrugs = 3
)

// QueryResult is the outcome of a combination lookup.
// When Overridden is set, Summaries holds exactly one synthetic summary.
type QueryResult struct {
	Drugs         []string         `json:"drugs"`
	Key           string           `json:"key"`
	Overridden    bool             `json:"overridden"`
	OverrideClass string           `json:"override_class,omitempty"`
	Summaries     []DiluentSummary `json:"summaries"`
}

// NoData reports the legitimate "nothing published" outcome
func (r QueryResult) NoData() bool {
	return !r.Overridden && len(r.Summaries) == 0
}

// ValidateCombination checks that drugs names 2 or 3 distinct non-empty drugs
// and returns their trimmed display names.
func ValidateCombination(drugs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(drugs))
	display := make([]string, 0, len(drugs))

	for _, d := range drugs {
		n := Normalize(d)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		display = append(display, d)
	}

	switch {
	case len(display) < MinDrugs:
		return nil, fmt.Errorf("%w: at least %d distinct drugs are required, got %d", ErrInvalidCombination, MinDrugs, len(display))
	case len(display) > MaxDrugs:
		return nil, fmt.Errorf("%w: at most %d drugs are supported, got %d", ErrInvalidCombination, MaxDrugs, len(display))
	}

	for i := range display {
		display[i] = strings.TrimSpace(display[i])
	}
	return display, nil
}

// Query runs the override rule, then the matcher and the diluent summarizer.
// No matching record is not an error: the result simply has no summaries.
func (idx *Index) Query(drugs []string) (QueryResult, error) {
	display, err := ValidateCombination(drugs)
	if err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{
		Drugs: display,
		Key:   CombinationKey(display),
	}

	if class, fired := idx.CheckOverride(display); fired {
		result.Overridden = true
		result.OverrideClass = class
		result.Summaries = []DiluentSummary{overrideSummary()}
		return result, nil
	}

	result.Summaries = Summarize(idx.FindMatches(display))
	return result, nil
}
