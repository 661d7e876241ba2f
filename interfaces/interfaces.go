// Package interfaces defines core abstractions for the compatibility API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/compatparser/entities"
)

// DataQualityReport lists integrity defects of a loaded dataset.
// None of them stops the service, they are logged and exposed for curation.
type DataQualityReport struct {
	// Codes used in the data (or by the override rule) without a legend entry
	ClassificationsWithoutLegend []string `json:"classifications_without_legend"`
	// Codes outside the known classification set, they rank lowest
	UnknownClassifications    []string `json:"unknown_classifications"`
	QualifiersWithoutLegend   []string `json:"qualifiers_without_legend"`
	ReferencesWithoutCitation []string `json:"references_without_citation"`
	// Rows repeating the same combination, diluent and classification
	DuplicateRows int `json:"duplicate_rows"`
	// Drug class entries naming drugs absent from the dataset
	ClassifiedDrugsNotInDataset []string         `json:"classified_drugs_not_in_dataset"`
	Stats                       compat.LoadStats `json:"stats"`
}

// DataStore defines the contract for data storage operations.
// The index is replaced as a whole so queries never see a partial reload.
type DataStore interface {
	GetIndex() *compat.Index
	GetReport() *DataQualityReport
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(index *compat.Index, report *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for loading the raw reference tables.
type Parser interface {
	// ParseTables loads every table; only a main dataset failure is returned
	ParseTables(ctx context.Context) (entities.RawTables, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeCompatibility(w http.ResponseWriter, r *http.Request)
	ServeLegend(w http.ResponseWriter, r *http.Request)
	ServeReference(w http.ResponseWriter, r *http.Request)
	ServeDrugs(w http.ResponseWriter, r *http.Request)
	ServeDiluents(w http.ResponseWriter, r *http.Request)
	ServeDataQuality(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status, its details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateDrugName checks a single user supplied drug name
	ValidateDrugName(input string) error

	// ValidateDiluent checks a user supplied diluent filter
	ValidateDiluent(input string) error

	// ReportDataQuality inspects a loaded index for integrity defects
	ReportDataQuality(index *compat.Index) *DataQualityReport
}
