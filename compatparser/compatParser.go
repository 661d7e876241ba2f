// Package compatparser loads the compatibility dataset and its companion
// tables (legends, references, drug classes) from CSV files.
package compatparser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/giygas/compatibility-api/compatparser/entities"
	"github.com/giygas/compatibility-api/interfaces"
	"github.com/giygas/compatibility-api/logging"
)

// Compile-time check to ensure CompatibilityParser implements Parser interface
var _ interfaces.Parser = (*CompatibilityParser)(nil)

// Sources locates the CSV files. File names are relative to DataDir.
type Sources struct {
	DataDir              string
	Dataset              string
	ClassificationLegend string
	QualifierLegend      string
	References           string
	DrugClasses          string
	// DatasetURL, when set, is downloaded over Dataset before each parse
	DatasetURL string
}

// DefaultSources returns the file layout of the published data folder
func DefaultSources(dataDir string) Sources {
	return Sources{
		DataDir:              dataDir,
		Dataset:              "Website_DataSet.csv",
		ClassificationLegend: "classification_legend.csv",
		QualifierLegend:      "qualifier_legend.csv",
		References:           "references.csv",
		DrugClasses:          "drug_classes.csv",
	}
}

func (s Sources) path(name string) string {
	return filepath.Join(s.DataDir, name)
}

// CompatibilityParser implements the Parser interface
type CompatibilityParser struct {
	sources Sources
}

// NewCompatibilityParser creates a parser reading from sources
func NewCompatibilityParser(sources Sources) *CompatibilityParser {
	return &CompatibilityParser{sources: sources}
}

// ParseTables loads every table concurrently. Only the main dataset is
// required: a failure on any other table is logged and the table is left empty.
func (p *CompatibilityParser) ParseTables(ctx context.Context) (entities.RawTables, error) {
	var tables entities.RawTables

	if p.sources.DatasetURL != "" {
		if err := downloadFile(ctx, p.sources.DatasetURL, p.sources.path(p.sources.Dataset)); err != nil {
			// Fall back on the copy already on disk, if any
			logging.Warn("Dataset download failed, using local copy", "error", err)
		}
	}

	var wg sync.WaitGroup
	var datasetErr error

	wg.Add(5)

	go func() {
		defer wg.Done()
		tables.Compatibility, datasetErr = parseDataset(p.sources.path(p.sources.Dataset))
	}()

	go func() {
		defer wg.Done()
		rows, err := parseClassificationLegend(p.sources.path(p.sources.ClassificationLegend))
		if err != nil {
			logging.Warn("Classification legend not loaded, labels will be empty", "error", err)
		}
		tables.ClassificationLegend = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := parseQualifierLegend(p.sources.path(p.sources.QualifierLegend))
		if err != nil {
			logging.Warn("Qualifier legend not loaded, descriptions will be empty", "error", err)
		}
		tables.QualifierLegend = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := parseReferences(p.sources.path(p.sources.References))
		if err != nil {
			logging.Warn("References not loaded", "error", err)
		}
		tables.References = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := parseDrugClasses(p.sources.path(p.sources.DrugClasses))
		if err != nil {
			logging.Warn("Drug classes not loaded, the class override rule is disabled", "error", err)
		}
		tables.DrugClasses = rows
	}()

	wg.Wait()

	if datasetErr != nil {
		return entities.RawTables{}, fmt.Errorf("failed to load compatibility dataset: %w", datasetErr)
	}

	logging.Info("Compatibility tables parsed",
		"rows", len(tables.Compatibility),
		"classification_legend", len(tables.ClassificationLegend),
		"qualifier_legend", len(tables.QualifierLegend),
		"references", len(tables.References),
		"drug_classes", len(tables.DrugClasses),
	)

	return tables, nil
}

func parseDataset(path string) ([]entities.CompatibilityRow, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("drug_1", "drug_2", "diluent", "classification"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]entities.CompatibilityRow, 0, len(t.rows))
	for i := range t.rows {
		rows = append(rows, entities.CompatibilityRow{
			Drug1:          t.get(i, "drug_1"),
			Drug2:          t.get(i, "drug_2"),
			Drug3:          t.get(i, "drug_3"),
			Diluent:        t.get(i, "diluent"),
			Classification: t.get(i, "classification"),
			Qualifiers:     t.get(i, "qualifiers"),
			ReferenceIDs:   t.get(i, "reference_ids"),
		})
	}
	return rows, nil
}

func parseClassificationLegend(path string) ([]entities.ClassificationLegendRow, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("id", "label"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]entities.ClassificationLegendRow, 0, len(t.rows))
	for i := range t.rows {
		rows = append(rows, entities.ClassificationLegendRow{
			ID:          t.get(i, "id"),
			Label:       t.get(i, "label"),
			Description: t.get(i, "description"),
		})
	}
	return rows, nil
}

func parseQualifierLegend(path string) ([]entities.QualifierLegendRow, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("code"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]entities.QualifierLegendRow, 0, len(t.rows))
	for i := range t.rows {
		rows = append(rows, entities.QualifierLegendRow{
			Code:        t.get(i, "code"),
			Description: t.get(i, "description"),
		})
	}
	return rows, nil
}

func parseReferences(path string) ([]entities.ReferenceRow, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("id", "full_reference"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]entities.ReferenceRow, 0, len(t.rows))
	for i := range t.rows {
		rows = append(rows, entities.ReferenceRow{
			ID:            t.get(i, "id"),
			FullReference: t.get(i, "full_reference"),
		})
	}
	return rows, nil
}

func parseDrugClasses(path string) ([]entities.DrugClassRow, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("drug_name", "class"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]entities.DrugClassRow, 0, len(t.rows))
	for i := range t.rows {
		rows = append(rows, entities.DrugClassRow{
			DrugName: t.get(i, "drug_name"),
			Class:    t.get(i, "class"),
		})
	}
	return rows, nil
}
