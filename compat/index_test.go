package compat

import (
	"errors"
	"reflect"
	"testing"

	"github.com/giygas/compatibility-api/compatparser/entities"
)

func row(d1, d2, d3, diluent, class, qualifiers, refs string) entities.CompatibilityRow {
	return entities.CompatibilityRow{
		Drug1:          d1,
		Drug2:          d2,
		Drug3:          d3,
		Diluent:        diluent,
		Classification: class,
		Qualifiers:     qualifiers,
		ReferenceIDs:   refs,
	}
}

func mustIndex(t *testing.T, tables entities.RawTables, opts ...Option) *Index {
	t.Helper()
	idx, err := NewIndex(tables, opts...)
	if err != nil {
		t.Fatalf("NewIndex returned error: %v", err)
	}
	return idx
}

func TestNewIndexEmptyDataset(t *testing.T) {
	_, err := NewIndex(entities.RawTables{})
	if !errors.Is(err, ErrNoDataset) {
		t.Fatalf("Expected ErrNoDataset, got %v", err)
	}

	_, err = NewIndex(entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "", "", "Water for injection", "1", "", "")},
	})
	if !errors.Is(err, ErrNoDataset) {
		t.Fatalf("Expected ErrNoDataset when every row is skipped, got %v", err)
	}
}

func TestNewIndexSkipsInvalidRows(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{
			row("Drug X", "Drug Y", "", "Water for injection", "1", "", ""),
			row("Drug X", "", "", "Water for injection", "1", "", ""),
			row("Drug X", "Drug Z", "", "Water for injection", "4", "", ""),
			row("Drug X", "Drug Z", "", "Water for injection", "", "", ""),
		},
	})

	stats := idx.Stats()
	if stats.Rows != 4 || stats.Loaded != 1 {
		t.Errorf("Expected 4 rows and 1 loaded, got %+v", stats)
	}
	if stats.SkippedMissingDrugs != 1 || stats.SkippedClassification != 2 {
		t.Errorf("Unexpected skip counters: %+v", stats)
	}
	if idx.Version() == "" {
		t.Error("Expected a version id")
	}
}

func TestNewIndexDegradedWithoutOptionalTables(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
	})

	entry, ok := idx.Legend(ClassificationAnecdotal)
	if ok || entry.Label != "" || entry.Description != "" {
		t.Errorf("Expected empty legend entry, got %+v", entry)
	}
	if _, ok := idx.Reference("1"); ok {
		t.Error("Expected no reference")
	}
	if _, fired := idx.CheckOverride([]string{"Morphine", "Oxycodone"}); fired {
		t.Error("Override rule must never fire without a drug class table")
	}
}

func TestRoundTripAnyOrder(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{
			row("Drug A", "Drug B", "", "Diluent D", "2", "C", "7"),
			row("Drug A", "Drug B", "", "Other", "1", "", ""),
		},
	})

	matches := idx.FindMatches([]string{"drug b", " DRUG A"})
	var found bool
	for _, m := range matches {
		if m.Diluent == "Diluent D" {
			found = true
			if !reflect.DeepEqual(m.Drugs, []string{"Drug A", "Drug B"}) {
				t.Errorf("Expected display drugs as authored, got %v", m.Drugs)
			}
		}
	}
	if !found {
		t.Fatal("Expected record with diluent D to be retrievable in reverse order")
	}
	if len(matches) != 2 {
		t.Errorf("Expected matches across every diluent, got %d", len(matches))
	}
}

func TestScenarioSingleRow(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
	})

	result, err := idx.Query([]string{"Drug Y", "Drug X"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Overridden || result.NoData() {
		t.Fatalf("Expected a regular match, got %+v", result)
	}
	if len(result.Summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(result.Summaries))
	}
	s := result.Summaries[0]
	if s.Diluent != "Water for injection" || s.Classification != "1" {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Morphine", "Haloperidol", "", "Water for injection", "1", "C", "12")},
	})

	records := idx.Records()
	records[0].Drugs[0] = "Changed"
	records[0].Qualifiers[0] = "Z"
	records[0].ReferenceIDs[0] = "999"

	matches := idx.FindMatches([]string{"Morphine", "Haloperidol"})
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	want := []string{"Morphine", "Haloperidol"}
	if !reflect.DeepEqual(matches[0].Drugs, want) {
		t.Errorf("Expected drugs %v after modifying Records, got %v", want, matches[0].Drugs)
	}
	matches[0].Qualifiers[0] = "Z"
	matches[0].ReferenceIDs[0] = "999"

	result, err := idx.Query([]string{"Haloperidol", "Morphine"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := result.Summaries[0]
	if !reflect.DeepEqual(s.Qualifiers, []string{"C"}) || !reflect.DeepEqual(s.References, []string{"12"}) {
		t.Errorf("Expected index data unchanged, got %+v", s)
	}
	if got := idx.Records()[0]; got.Qualifiers[0] != "C" || got.ReferenceIDs[0] != "12" {
		t.Errorf("Expected stored record unchanged, got %+v", got)
	}
	if idx.RecordCount() != 1 {
		t.Errorf("Expected RecordCount 1, got %d", idx.RecordCount())
	}
}

func TestScenarioConflictingRows(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{
			row("Drug X", "Drug Y", "", "Water for injection", "2", "C", "1"),
			row("Drug Y", "Drug X", "", "Water for injection", "3", "H", "2"),
		},
	})

	result, err := idx.Query([]string{"Drug X", "Drug Y"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(result.Summaries))
	}
	if result.Summaries[0].Classification != ClassificationIncompatible {
		t.Errorf("Expected classification 3, got %q", result.Summaries[0].Classification)
	}
}

func TestScenarioOverrideWithoutData(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
		DrugClasses: []entities.DrugClassRow{
			{DrugName: "Morphine", Class: "Opioid"},
			{DrugName: "Oxycodone", Class: "Opioid"},
		},
	})

	result, err := idx.Query([]string{"morphine", "Oxycodone "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Overridden || result.NoData() {
		t.Fatalf("Expected override, got %+v", result)
	}
	if result.OverrideClass != "Opioid" {
		t.Errorf("Expected Opioid, got %q", result.OverrideClass)
	}
	if len(result.Summaries) != 1 {
		t.Fatalf("Expected a single summary, got %d", len(result.Summaries))
	}
	s := result.Summaries[0]
	if s.Classification != ClassificationNotRecommended || s.Diluent != OverrideDiluent {
		t.Errorf("Unexpected override summary %+v", s)
	}
	if len(s.Qualifiers) != 0 || len(s.References) != 0 {
		t.Errorf("Expected empty qualifiers and references, got %+v", s)
	}
}

func TestOverrideBypassesDataset(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{
			row("Morphine", "Oxycodone", "", "Water for injection", "1", "C", "1"),
		},
		DrugClasses: []entities.DrugClassRow{
			{DrugName: "Morphine", Class: "Opioid"},
			{DrugName: "Oxycodone", Class: "Opioid"},
		},
	})

	result, err := idx.Query([]string{"Morphine", "Oxycodone"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Overridden || result.Summaries[0].Classification != "5" {
		t.Errorf("Expected the class rule to win over the dataset, got %+v", result)
	}
}

func TestScenarioNoData(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
	})

	result, err := idx.Query([]string{"Drug P", "Drug Q"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.NoData() {
		t.Errorf("Expected no data, got %+v", result)
	}
	if result.Summaries == nil {
		t.Error("Expected an empty, non-nil summaries list")
	}
}

func TestQueryValidation(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
	})

	invalid := [][]string{
		nil,
		{"Drug X"},
		{"Drug X", "  "},
		{"Drug X", "drug x"},
		{"A", "B", "C", "D"},
	}

	for _, drugs := range invalid {
		_, err := idx.Query(drugs)
		if !errors.Is(err, ErrInvalidCombination) {
			t.Errorf("Query(%v): expected ErrInvalidCombination, got %v", drugs, err)
		}
	}

	// Duplicates collapse before counting
	result, err := idx.Query([]string{"Drug X", "DRUG X", "Drug Y"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Drugs) != 2 || len(result.Summaries) != 1 {
		t.Errorf("Expected deduplicated drugs and one summary, got %+v", result)
	}
}

func TestDrugNamesAndDiluents(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{
			row("Morphine", "Haloperidol", "", "Water for injection", "1", "", ""),
			row("morphine ", "Midazolam", "", "Sodium chloride 0.9%", "2", "", ""),
		},
	})

	names := idx.DrugNames()
	expected := []string{"Haloperidol", "Midazolam", "Morphine"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("DrugNames() = %v, want %v", names, expected)
	}

	diluents := idx.Diluents()
	if len(diluents) != 2 {
		t.Errorf("Expected 2 diluents, got %v", diluents)
	}
}

func TestLegendLookups(t *testing.T) {
	idx := mustIndex(t, entities.RawTables{
		Compatibility: []entities.CompatibilityRow{row("Drug X", "Drug Y", "", "Water for injection", "1", "", "")},
		ClassificationLegend: []entities.ClassificationLegendRow{
			{ID: "3", Label: "Incompatible", Description: "Do not mix"},
			{ID: "1", Label: "Anecdotal", Description: "Case reports"},
		},
		QualifierLegend: []entities.QualifierLegendRow{{Code: "C", Description: "Concentration dependent"}},
		References:      []entities.ReferenceRow{{ID: "12", FullReference: " Smith et al. 2019 "}},
	})

	if entry, ok := idx.Legend("3"); !ok || entry.Label != "Incompatible" {
		t.Errorf("Unexpected legend entry %+v", entry)
	}
	if !reflect.DeepEqual(idx.Classifications(), []Classification{"1", "3"}) {
		t.Errorf("Expected numerically ordered codes, got %v", idx.Classifications())
	}
	if desc, _ := idx.QualifierDescription("C"); desc != "Concentration dependent" {
		t.Errorf("Unexpected qualifier description %q", desc)
	}
	if ref, _ := idx.Reference("12"); ref != "Smith et al. 2019" {
		t.Errorf("Unexpected reference %q", ref)
	}
}
