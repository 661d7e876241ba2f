// Package handlers provides HTTP request handlers for the compatibility API.
// It assembles lookup results for display: legend labels, qualifier
// descriptions and reference citations are resolved here, outside the core.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/interfaces"
	"github.com/giygas/compatibility-api/logging"
	"github.com/giygas/compatibility-api/metrics"
	"github.com/go-chi/chi/v5"
)

// Result statuses of a compatibility lookup
const (
	StatusMatch    = "match"
	StatusNoData   = "no_data"
	StatusOverride = "override"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if index := h.dataStore.GetIndex(); index != nil {
		w.Header().Set("Last-Modified", index.LoadedAt().UTC().Format(http.TimeFormat))
		w.Header().Set("X-Data-Version", index.Version())
	}
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// currentIndex answers 503 when no dataset has been loaded yet
func (h *HTTPHandlerImpl) currentIndex(w http.ResponseWriter) (*compat.Index, bool) {
	index := h.dataStore.GetIndex()
	if index == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
		return nil, false
	}
	return index, true
}

// ServeCompatibility looks up a 2 or 3 drug combination.
// GET /v1/compatibility?drug=A&drug=B[&drug=C][&diluent=D]
func (h *HTTPHandlerImpl) ServeCompatibility(w http.ResponseWriter, r *http.Request) {
	index, ok := h.currentIndex(w)
	if !ok {
		return
	}

	query := r.URL.Query()
	drugs := query["drug"]
	diluent := query.Get("diluent")

	for _, d := range drugs {
		// Blank slots are dropped, Query decides whether enough names remain
		if strings.TrimSpace(d) == "" {
			continue
		}
		if err := h.validator.ValidateDrugName(d); err != nil {
			metrics.QueryTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if diluent != "" {
		if err := h.validator.ValidateDiluent(diluent); err != nil {
			metrics.QueryTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := index.Query(drugs)
	if err != nil {
		if errors.Is(err, compat.ErrInvalidCombination) {
			metrics.QueryTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("Compatibility lookup failed", "error", err, "drugs", drugs)
		h.RespondWithError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	if diluent != "" && !result.Overridden {
		result.Summaries = compat.FilterDiluent(result.Summaries, diluent)
	}

	response := AssembleResult(index, result, diluent)
	switch response.Status {
	case StatusOverride:
		metrics.QueryTotal.WithLabelValues(metrics.OutcomeOverride).Inc()
	case StatusNoData:
		metrics.QueryTotal.WithLabelValues(metrics.OutcomeNoData).Inc()
	default:
		metrics.QueryTotal.WithLabelValues(metrics.OutcomeMatch).Inc()
	}

	// No data is a legitimate answer, not a missing resource
	h.RespondWithJSON(w, http.StatusOK, response)
}

// ServeLegend returns the classification and qualifier legends
func (h *HTTPHandlerImpl) ServeLegend(w http.ResponseWriter, r *http.Request) {
	index, ok := h.currentIndex(w)
	if !ok {
		return
	}

	h.RespondWithJSON(w, http.StatusOK, AssembleLegend(index))
}

// ServeReference returns the citation for one reference id
func (h *HTTPHandlerImpl) ServeReference(w http.ResponseWriter, r *http.Request) {
	index, ok := h.currentIndex(w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing reference id")
		return
	}

	citation, found := index.Reference(id)
	if !found {
		h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("Reference %s not found", id))
		return
	}

	h.RespondWithJSON(w, http.StatusOK, ReferenceInfo{ID: id, Citation: citation})
}

// ServeDrugs lists the drug names present in the dataset
func (h *HTTPHandlerImpl) ServeDrugs(w http.ResponseWriter, r *http.Request) {
	index, ok := h.currentIndex(w)
	if !ok {
		return
	}

	h.RespondWithJSON(w, http.StatusOK, index.DrugNames())
}

// ServeDiluents lists the diluents present in the dataset
func (h *HTTPHandlerImpl) ServeDiluents(w http.ResponseWriter, r *http.Request) {
	index, ok := h.currentIndex(w)
	if !ok {
		return
	}

	h.RespondWithJSON(w, http.StatusOK, index.Diluents())
}

// ServeDataQuality returns the integrity report of the loaded dataset
func (h *HTTPHandlerImpl) ServeDataQuality(w http.ResponseWriter, r *http.Request) {
	report := h.dataStore.GetReport()
	if report == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, report)
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, details, httpStatus := h.healthChecker.HealthCheck()

	uptime := time.Duration(0)
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
