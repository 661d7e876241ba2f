package entities

// CompatibilityRow is one line of the main dataset, as authored
type CompatibilityRow struct {
	Drug1          string `json:"drug_1"`
	Drug2          string `json:"drug_2"`
	Drug3          string `json:"drug_3,omitempty"`
	Diluent        string `json:"diluent"`
	Classification string `json:"classification"`
	Qualifiers     string `json:"qualifiers"`
	ReferenceIDs   string `json:"reference_ids"`
}

// Drugs returns the drug columns in column order, including empty ones
func (r CompatibilityRow) Drugs() []string {
	return []string{r.Drug1, r.Drug2, r.Drug3}
}
