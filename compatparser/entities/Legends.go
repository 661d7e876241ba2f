package entities

type ClassificationLegendRow struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type QualifierLegendRow struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ReferenceRow struct {
	ID            string `json:"id"`
	FullReference string `json:"full_reference"`
}

type DrugClassRow struct {
	DrugName string `json:"drug_name"`
	Class    string `json:"class"`
}
