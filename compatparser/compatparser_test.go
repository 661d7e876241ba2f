package compatparser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const datasetCSV = "drug_1,drug_2,drug_3,diluent,classification,qualifiers,reference_ids\n" +
	"Morphine,Haloperidol,,Water for injection,1,C|H,1 2\n" +
	"Morphine,Midazolam,Hyoscine,Sodium chloride 0.9%,2,,3\n"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestReadCSV(t *testing.T) {
	content := "\xEF\xBB\xBF Drug_1 ,drug_2\nA,B\n\n , \nC,D,extra\nE\n"

	tbl, err := readCSV([]byte(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tbl.headers[0] != "drug_1" {
		t.Errorf("Expected BOM and spaces stripped from header, got %q", tbl.headers[0])
	}
	if len(tbl.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(tbl.rows))
	}
	if tbl.get(1, "drug_2") != "D" {
		t.Errorf("Expected D, got %q", tbl.get(1, "drug_2"))
	}
	if tbl.get(2, "drug_2") != "" {
		t.Errorf("Expected missing field to be empty, got %q", tbl.get(2, "drug_2"))
	}
}

func TestReadCSVWindows1252(t *testing.T) {
	// "Glucose 5% – bag" with an en dash encoded as 0x96
	content := []byte("drug_1,diluent\nA,Glucose 5% \x96 bag\n")

	tbl, err := readCSV(content)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := tbl.get(0, "diluent"); got != "Glucose 5% – bag" {
		t.Errorf("Expected decoded text, got %q", got)
	}
}

func TestReadCSVErrors(t *testing.T) {
	if _, err := readCSV([]byte("")); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("Expected ErrMissingHeader, got %v", err)
	}
	if _, err := readCSV([]byte("drug_1,drug_2\n")); !errors.Is(err, ErrNoRows) {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestParseTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Website_DataSet.csv", datasetCSV)
	writeFile(t, dir, "classification_legend.csv", "id,label,description\n1,Anecdotal,Case report\n")
	writeFile(t, dir, "qualifier_legend.csv", "code,description\nC,Concentration dependent\n")
	writeFile(t, dir, "references.csv", "id,full_reference\n1,Smith 2019\n")
	writeFile(t, dir, "drug_classes.csv", "drug_name,class\nMorphine,Opioid\n")

	tables, err := NewCompatibilityParser(DefaultSources(dir)).ParseTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(tables.Compatibility) != 2 {
		t.Fatalf("Expected 2 dataset rows, got %d", len(tables.Compatibility))
	}
	first := tables.Compatibility[0]
	if first.Drug1 != "Morphine" || first.Drug3 != "" || first.Qualifiers != "C|H" || first.ReferenceIDs != "1 2" {
		t.Errorf("Unexpected first row %+v", first)
	}
	if tables.Compatibility[1].Drug3 != "Hyoscine" {
		t.Errorf("Expected third drug, got %+v", tables.Compatibility[1])
	}
	if len(tables.ClassificationLegend) != 1 || len(tables.QualifierLegend) != 1 ||
		len(tables.References) != 1 || len(tables.DrugClasses) != 1 {
		t.Errorf("Expected every optional table to be loaded, got %+v", tables)
	}
}

func TestParseTablesOptionalMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Website_DataSet.csv", datasetCSV)
	writeFile(t, dir, "drug_classes.csv", "wrong,header\nMorphine,Opioid\n")

	tables, err := NewCompatibilityParser(DefaultSources(dir)).ParseTables(context.Background())
	if err != nil {
		t.Fatalf("Optional tables must not be fatal, got %v", err)
	}
	if len(tables.Compatibility) != 2 {
		t.Errorf("Expected dataset rows, got %d", len(tables.Compatibility))
	}
	if tables.ClassificationLegend != nil || tables.DrugClasses != nil {
		t.Errorf("Expected empty optional tables, got %+v", tables)
	}
}

func TestParseTablesDatasetFatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"missing file", "", os.ErrNotExist},
		{"no header", "\n\n", ErrMissingHeader},
		{"no rows", "drug_1,drug_2,diluent,classification\n", ErrNoRows},
		{"missing column", "drug_1,drug_2\nA,B\n", ErrMissingColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				writeFile(t, dir, "Website_DataSet.csv", tt.content)
			}

			_, err := NewCompatibilityParser(DefaultSources(dir)).ParseTables(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseTablesDownloadsDataset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(datasetCSV))
	}))
	defer ts.Close()

	dir := t.TempDir()
	sources := DefaultSources(dir)
	sources.DatasetURL = ts.URL

	tables, err := NewCompatibilityParser(sources).ParseTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tables.Compatibility) != 2 {
		t.Errorf("Expected downloaded rows, got %d", len(tables.Compatibility))
	}
}

func TestDownloadFailureKeepsLocalCopy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "Website_DataSet.csv", datasetCSV)
	sources := DefaultSources(dir)
	sources.DatasetURL = ts.URL

	tables, err := NewCompatibilityParser(sources).ParseTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tables.Compatibility) != 2 {
		t.Errorf("Expected local rows, got %d", len(tables.Compatibility))
	}
}
