// Package validation provides input screening and dataset quality checks for the compatibility API.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/interfaces"
)

// Pre-compiled patterns, reused for every request
var (
	// Letters in any script, digits, spaces and the punctuation found in drug and diluent names
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'%(),/&]+$`)

	// Names are only used as map keys, so only markup that could be echoed
	// back into a page and path traversal are screened. Combination names
	// such as "Hyoscine butylbromide & glycopyrronium" must pass.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"../", "..\\", "%2e%2e", "file://",
	}
)

const (
	minInputLength = 2
	maxInputLength = 100
	maxInputWords  = 8
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateDrugName screens one user supplied drug name
func (v *DataValidatorImpl) ValidateDrugName(input string) error {
	return v.validateName("drug name", input)
}

// ValidateDiluent screens a user supplied diluent filter
func (v *DataValidatorImpl) ValidateDiluent(input string) error {
	return v.validateName("diluent", input)
}

func (v *DataValidatorImpl) validateName(field, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	length := utf8.RuneCountInString(trimmed)
	if length < minInputLength {
		return fmt.Errorf("%s too short: minimum %d characters", field, minInputLength)
	}
	if length > maxInputLength {
		return fmt.Errorf("%s too long: maximum %d characters", field, maxInputLength)
	}

	if len(strings.Fields(trimmed)) > maxInputWords {
		return fmt.Errorf("%s too complex: maximum %d words allowed", field, maxInputWords)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("%s contains potentially dangerous content", field)
		}
	}

	if !inputRegex.MatchString(trimmed) {
		return fmt.Errorf("%s contains invalid characters", field)
	}

	return nil
}

// ReportDataQuality lists integrity defects of a loaded index. A code used in
// the data without a legend entry still renders, with an empty label.
func (v *DataValidatorImpl) ReportDataQuality(index *compat.Index) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}
	if index == nil {
		return report
	}
	report.Stats = index.Stats()

	missingLegend := make(map[string]struct{})
	unknown := make(map[string]struct{})
	missingQualifiers := make(map[string]struct{})
	missingReferences := make(map[string]struct{})
	seenRows := make(map[string]struct{})
	datasetDrugs := make(map[string]struct{})

	// The override code can be returned without ever appearing in the data
	if _, ok := index.Legend(compat.ClassificationNotRecommended); !ok {
		missingLegend[compat.ClassificationNotRecommended.String()] = struct{}{}
	}

	for _, r := range index.Records() {
		code := r.Classification
		if !code.Known() {
			unknown[code.String()] = struct{}{}
		}
		if _, ok := index.Legend(code); !ok {
			missingLegend[code.String()] = struct{}{}
		}

		for _, q := range r.Qualifiers {
			if _, ok := index.QualifierDescription(q); !ok {
				missingQualifiers[q] = struct{}{}
			}
		}
		for _, id := range r.ReferenceIDs {
			if _, ok := index.Reference(id); !ok {
				missingReferences[id] = struct{}{}
			}
		}

		rowKey := r.Key() + "\x00" + r.Diluent + "\x00" + code.String()
		if _, dup := seenRows[rowKey]; dup {
			report.DuplicateRows++
		}
		seenRows[rowKey] = struct{}{}

		for _, d := range r.Drugs {
			datasetDrugs[compat.Normalize(d)] = struct{}{}
		}
	}

	for _, name := range index.ClassifiedDrugs() {
		if _, ok := datasetDrugs[compat.Normalize(name)]; !ok {
			report.ClassifiedDrugsNotInDataset = append(report.ClassifiedDrugsNotInDataset, name)
		}
	}

	report.ClassificationsWithoutLegend = sortedKeys(missingLegend)
	report.UnknownClassifications = sortedKeys(unknown)
	report.QualifiersWithoutLegend = sortedKeys(missingQualifiers)
	report.ReferencesWithoutCitation = sortedKeys(missingReferences)
	sort.Strings(report.ClassifiedDrugsNotInDataset)

	return report
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
