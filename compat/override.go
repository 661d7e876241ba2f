package compat

// OverrideDiluent is the placeholder diluent of an override summary
const OverrideDiluent = "not applicable"

// CheckOverride applies the shared drug class rule: two or more drugs of the
// same flagged class make the combination not recommended, whatever the
// dataset says and whatever the diluent. Drugs without a known class are
// ignored. Flagged classes are tried in configured order and the first one
// reaching two drugs is returned.
func (idx *Index) CheckOverride(drugs []string) (class string, fired bool) {
	if len(idx.flaggedClasses) == 0 || len(idx.drugClasses) == 0 {
		return "", false
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	for _, d := range drugs {
		c, ok := idx.DrugClass(d)
		if !ok {
			continue
		}
		n := Normalize(c)
		counts[n]++
		if _, seen := display[n]; !seen {
			display[n] = c
		}
	}

	for _, flagged := range idx.flaggedClasses {
		if counts[flagged] >= 2 {
			return display[flagged], true
		}
	}
	return "", false
}

// overrideSummary is the single synthetic summary returned when the rule fires
func overrideSummary() DiluentSummary {
	return DiluentSummary{
		Diluent:        OverrideDiluent,
		Classification: ClassificationNotRecommended,
		Qualifiers:     []string{},
		References:     []string{},
	}
}
