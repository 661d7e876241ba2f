// Package compat implements the matching and summarization engine of the
// compatibility lookup: combination keys, the dataset index, the shared drug
// class override rule and the conservative per-diluent summary.
//
// An Index is built once from raw tables and never mutated afterwards, so it
// can be shared by concurrent queries and replaced as a whole on reload.
package compat

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/giygas/compatibility-api/compatparser/entities"
	"github.com/google/uuid"
)

// ErrNoDataset is returned when the main dataset yields no usable record
var ErrNoDataset = errors.New("compatibility dataset is empty")

// DefaultFlaggedClasses are checked by the override rule, in priority order
var DefaultFlaggedClasses = []string{"Opioid", "Dopamine antagonist"}

// LegendEntry describes a classification code
type LegendEntry struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// LoadStats counts what happened to the raw dataset rows
type LoadStats struct {
	Rows                  int `json:"rows"`
	Loaded                int `json:"loaded"`
	SkippedMissingDrugs   int `json:"skipped_missing_drugs"`
	SkippedClassification int `json:"skipped_classification"`
}

// Index is the immutable, in-memory view of every reference table
type Index struct {
	records         []Record
	byKey           map[string][]int
	classifications map[Classification]LegendEntry
	qualifiers      map[string]string
	references      map[string]string
	drugClasses     map[string]string
	flaggedClasses  []string
	stats           LoadStats
	version         string
	loadedAt        time.Time
}

// Option customizes index construction
type Option func(*Index)

// WithFlaggedClasses replaces the override rule's class list. Order matters:
// when several classes could fire, the first one listed is reported.
func WithFlaggedClasses(classes ...string) Option {
	return func(idx *Index) {
		flagged := make([]string, 0, len(classes))
		for _, c := range classes {
			if n := Normalize(c); n != "" {
				flagged = append(flagged, n)
			}
		}
		idx.flaggedClasses = flagged
	}
}

// NewIndex shapes the raw tables into an Index. Only the compatibility table
// is required; legends, references and drug classes degrade to empty maps.
func NewIndex(tables entities.RawTables, opts ...Option) (*Index, error) {
	idx := &Index{
		byKey:           make(map[string][]int),
		classifications: make(map[Classification]LegendEntry, len(tables.ClassificationLegend)),
		qualifiers:      make(map[string]string, len(tables.QualifierLegend)),
		references:      make(map[string]string, len(tables.References)),
		drugClasses:     make(map[string]string, len(tables.DrugClasses)),
		version:         uuid.NewString(),
		loadedAt:        time.Now(),
	}
	WithFlaggedClasses(DefaultFlaggedClasses...)(idx)
	for _, opt := range opts {
		opt(idx)
	}

	idx.records = make([]Record, 0, len(tables.Compatibility))
	for _, row := range tables.Compatibility {
		idx.stats.Rows++

		if len(normalizedNames(row.Drugs())) < 2 {
			idx.stats.SkippedMissingDrugs++
			continue
		}

		classification, ok := ParseClassification(row.Classification)
		if !ok {
			idx.stats.SkippedClassification++
			continue
		}

		record := NewRecord(row.Drugs(), strings.TrimSpace(row.Diluent), classification, row.Qualifiers, row.ReferenceIDs)
		idx.byKey[record.Key()] = append(idx.byKey[record.Key()], len(idx.records))
		idx.records = append(idx.records, record)
	}
	idx.stats.Loaded = len(idx.records)

	if len(idx.records) == 0 {
		return nil, ErrNoDataset
	}

	for _, row := range tables.ClassificationLegend {
		code := Classification(strings.TrimSpace(row.ID))
		if code == "" {
			continue
		}
		idx.classifications[code] = LegendEntry{Label: row.Label, Description: row.Description}
	}

	for _, row := range tables.QualifierLegend {
		if code := strings.TrimSpace(row.Code); code != "" {
			idx.qualifiers[code] = row.Description
		}
	}

	for _, row := range tables.References {
		if id := strings.TrimSpace(row.ID); id != "" {
			idx.references[id] = strings.TrimSpace(row.FullReference)
		}
	}

	// Same normalization as the combination key, otherwise the override rule never matches
	for _, row := range tables.DrugClasses {
		name := Normalize(row.DrugName)
		class := strings.TrimSpace(row.Class)
		if name == "" || class == "" {
			continue
		}
		idx.drugClasses[name] = class
	}

	return idx, nil
}

// Records returns a copy of every loaded record in dataset order. Callers
// may modify the result without affecting the index.
func (idx *Index) Records() []Record {
	out := make([]Record, len(idx.records))
	for i, r := range idx.records {
		out[i] = r.clone()
	}
	return out
}

// RecordCount returns the number of loaded records
func (idx *Index) RecordCount() int {
	return len(idx.records)
}

// Stats returns the load counters
func (idx *Index) Stats() LoadStats {
	return idx.stats
}

// Version identifies this particular load of the dataset
func (idx *Index) Version() string {
	return idx.version
}

// LoadedAt returns the construction time of the index
func (idx *Index) LoadedAt() time.Time {
	return idx.loadedAt
}

// FlaggedClasses returns the normalized class names checked by the override rule
func (idx *Index) FlaggedClasses() []string {
	return append([]string(nil), idx.flaggedClasses...)
}

// Legend returns the label and description of a classification code.
// A missing entry yields an empty LegendEntry and ok == false.
func (idx *Index) Legend(code Classification) (LegendEntry, bool) {
	entry, ok := idx.classifications[code]
	return entry, ok
}

// Classifications returns the legend codes, numerically ordered
func (idx *Index) Classifications() []Classification {
	codes := make([]string, 0, len(idx.classifications))
	for c := range idx.classifications {
		codes = append(codes, string(c))
	}
	sortIDs(codes)

	out := make([]Classification, len(codes))
	for i, c := range codes {
		out[i] = Classification(c)
	}
	return out
}

// QualifierDescription returns the legend text for a qualifier code
func (idx *Index) QualifierDescription(code string) (string, bool) {
	desc, ok := idx.qualifiers[code]
	return desc, ok
}

// Qualifiers returns the qualifier legend codes, sorted
func (idx *Index) Qualifiers() []string {
	codes := make([]string, 0, len(idx.qualifiers))
	for c := range idx.qualifiers {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Reference returns the full citation for a reference id
func (idx *Index) Reference(id string) (string, bool) {
	ref, ok := idx.references[id]
	return ref, ok
}

// DrugClass returns the pharmacological class of a drug, looked up by normalized name
func (idx *Index) DrugClass(name string) (string, bool) {
	class, ok := idx.drugClasses[Normalize(name)]
	return class, ok
}

// DrugClassCount returns the number of drugs with a known class
func (idx *Index) DrugClassCount() int {
	return len(idx.drugClasses)
}

// ClassifiedDrugs returns the normalized names present in the drug class table, sorted
func (idx *Index) ClassifiedDrugs() []string {
	names := make([]string, 0, len(idx.drugClasses))
	for n := range idx.drugClasses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DrugNames returns the distinct drug display names found in the dataset.
// Variants that normalize to the same name are reported once, first spelling wins.
func (idx *Index) DrugNames() []string {
	return idx.distinct(func(r Record) []string { return r.Drugs })
}

// Diluents returns the distinct diluents found in the dataset
func (idx *Index) Diluents() []string {
	return idx.distinct(func(r Record) []string { return []string{r.Diluent} })
}

func (idx *Index) distinct(values func(Record) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range idx.records {
		for _, v := range values(r) {
			n := Normalize(v)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, strings.TrimSpace(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return Normalize(out[i]) < Normalize(out[j]) })
	return out
}
