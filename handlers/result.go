package handlers

import (
	"fmt"

	"github.com/giygas/compatibility-api/compat"
)

// QualifierInfo is a qualifier code with its legend description
type QualifierInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ReferenceInfo is a reference id with its citation
type ReferenceInfo struct {
	ID       string `json:"id"`
	Citation string `json:"citation"`
}

// DiluentResult is one displayable diluent summary
type DiluentResult struct {
	Diluent        string          `json:"diluent"`
	Classification string          `json:"classification"`
	Label          string          `json:"label"`
	Description    string          `json:"description"`
	Qualifiers     []QualifierInfo `json:"qualifiers"`
	References     []ReferenceInfo `json:"references"`
}

// CompatibilityResponse is the displayable answer to a lookup
type CompatibilityResponse struct {
	Drugs         []string        `json:"drugs"`
	Key           string          `json:"key"`
	Status        string          `json:"status"`
	OverrideClass string          `json:"override_class,omitempty"`
	DiluentFilter string          `json:"diluent_filter,omitempty"`
	Results       []DiluentResult `json:"results"`
}

// LegendResponse lists every classification and qualifier known to the legends
type LegendResponse struct {
	Classifications []ClassificationInfo `json:"classifications"`
	Qualifiers      []QualifierInfo      `json:"qualifiers"`
}

// ClassificationInfo is one classification legend entry
type ClassificationInfo struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// AssembleResult resolves a query result against the legends. An empty result
// renders a single "no data" entry with the sentinel classification.
func AssembleResult(index *compat.Index, result compat.QueryResult, diluent string) CompatibilityResponse {
	response := CompatibilityResponse{
		Drugs:         result.Drugs,
		Key:           result.Key,
		Status:        StatusMatch,
		DiluentFilter: diluent,
		Results:       make([]DiluentResult, 0, len(result.Summaries)),
	}

	switch {
	case result.Overridden:
		response.Status = StatusOverride
		response.OverrideClass = result.OverrideClass
	case len(result.Summaries) == 0:
		response.Status = StatusNoData
		response.Results = append(response.Results, assembleSummary(index, compat.DiluentSummary{
			Diluent:        diluent,
			Classification: compat.ClassificationNoData,
		}))
		return response
	}

	for _, s := range result.Summaries {
		response.Results = append(response.Results, assembleSummary(index, s))
	}

	return response
}

func assembleSummary(index *compat.Index, s compat.DiluentSummary) DiluentResult {
	entry, _ := index.Legend(s.Classification)

	res := DiluentResult{
		Diluent:        s.Diluent,
		Classification: s.Classification.String(),
		Label:          entry.Label,
		Description:    entry.Description,
		Qualifiers:     make([]QualifierInfo, 0, len(s.Qualifiers)),
		References:     make([]ReferenceInfo, 0, len(s.References)),
	}

	for _, q := range s.Qualifiers {
		desc, _ := index.QualifierDescription(q)
		res.Qualifiers = append(res.Qualifiers, QualifierInfo{Code: q, Description: desc})
	}

	for _, id := range s.References {
		citation, ok := index.Reference(id)
		if !ok {
			citation = fmt.Sprintf("Reference %s", id)
		}
		res.References = append(res.References, ReferenceInfo{ID: id, Citation: citation})
	}

	return res
}

// AssembleLegend lists the classification legend in code order, then the qualifiers
func AssembleLegend(index *compat.Index) LegendResponse {
	legend := LegendResponse{
		Classifications: []ClassificationInfo{},
		Qualifiers:      []QualifierInfo{},
	}

	for _, code := range index.Classifications() {
		entry, _ := index.Legend(code)
		legend.Classifications = append(legend.Classifications, ClassificationInfo{
			Code:        code.String(),
			Label:       entry.Label,
			Description: entry.Description,
		})
	}

	for _, q := range index.Qualifiers() {
		desc, _ := index.QualifierDescription(q)
		legend.Qualifiers = append(legend.Qualifiers, QualifierInfo{Code: q, Description: desc})
	}

	return legend
}
