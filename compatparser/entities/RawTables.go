package entities

// RawTables bundles every tabular source handed over by the loader.
// Compatibility is required, the other tables may be nil.
type RawTables struct {
	Compatibility        []CompatibilityRow
	ClassificationLegend []ClassificationLegendRow
	QualifierLegend      []QualifierLegendRow
	References           []ReferenceRow
	DrugClasses          []DrugClassRow
}
