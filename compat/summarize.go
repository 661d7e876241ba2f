package compat

import "sort"

// Preferred diluents are listed first in results
const (
	DiluentWaterForInjection = "Water for injection"
	DiluentSodiumChloride    = "Sodium chloride 0.9%"
)

// FindMatches returns every record of the drug set, across all diluents, in
// dataset order. The records are copies. An empty result means no published
// data.
func (idx *Index) FindMatches(drugs []string) []Record {
	positions := idx.byKey[CombinationKey(drugs)]
	matches := make([]Record, 0, len(positions))
	for _, p := range positions {
		matches = append(matches, idx.records[p].clone())
	}
	return matches
}

// Summarize collapses records into one summary per diluent. Records are
// grouped on the exact diluent text. Each group keeps the most restrictive
// classification and the union of its qualifiers and references, so a
// summary is never more permissive than any of its sources.
func Summarize(records []Record) []DiluentSummary {
	type group struct {
		diluent         string
		classifications []Classification
		qualifiers      stringSet
		references      stringSet
	}

	var order []*group
	groups := make(map[string]*group)

	for _, r := range records {
		g, ok := groups[r.Diluent]
		if !ok {
			g = &group{
				diluent:    r.Diluent,
				qualifiers: make(stringSet),
				references: make(stringSet),
			}
			groups[r.Diluent] = g
			order = append(order, g)
		}
		g.classifications = append(g.classifications, r.Classification)
		g.qualifiers.add(r.Qualifiers...)
		g.references.add(r.ReferenceIDs...)
	}

	summaries := make([]DiluentSummary, 0, len(order))
	for _, g := range order {
		summaries = append(summaries, DiluentSummary{
			Diluent:        g.diluent,
			Classification: Worst(g.classifications...),
			Qualifiers:     g.qualifiers.sorted(),
			References:     g.references.sorted(),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return diluentScore(summaries[i].Diluent) < diluentScore(summaries[j].Diluent)
	})

	return summaries
}

// diluentScore puts water for injection first and sodium chloride 0.9% second
func diluentScore(diluent string) int {
	switch Normalize(diluent) {
	case Normalize(DiluentWaterForInjection):
		return 0
	case Normalize(DiluentSodiumChloride):
		return 1
	default:
		return 2
	}
}

// FilterDiluent keeps the summaries whose diluent equals diluent exactly
func FilterDiluent(summaries []DiluentSummary, diluent string) []DiluentSummary {
	filtered := make([]DiluentSummary, 0, 1)
	for _, s := range summaries {
		if s.Diluent == diluent {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
