// Package health provides health checking functionality for the compatibility API.
package health

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/compatibility-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore   interfaces.DataStore
	reloadTimes []string
	now         func() time.Time
}

// NewHealthChecker creates a health checker. reloadTimes uses the scheduler
// format ("06:00;18:00") and drives the next update estimate.
func NewHealthChecker(dataStore interfaces.DataStore, reloadTimes string) interfaces.HealthChecker {
	var times []string
	for _, t := range strings.Split(reloadTimes, ";") {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}

	return &HealthCheckerImpl{
		dataStore:   dataStore,
		reloadTimes: times,
		now:         time.Now,
	}
}

// HealthCheck reports healthy, degraded or unhealthy from the loaded index and its age.
// The dataset is static between reloads, so an old index is degraded rather than unhealthy.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	index := h.dataStore.GetIndex()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	dataAge := h.now().Sub(lastUpdate)

	records := 0
	drugClasses := 0
	version := ""
	if index != nil {
		records = index.RecordCount()
		drugClasses = index.DrugClassCount()
		version = index.Version()
	}

	switch {
	case index == nil || records == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 72*time.Hour:
		status = "degraded"
		httpStatus = http.StatusOK

	case drugClasses == 0:
		// Without the class table the override rule cannot fire
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"records":        records,
		"drug_classes":   drugClasses,
		"data_version":   version,
		"is_updating":    isUpdating,
		"next_update":    h.CalculateNextUpdate().Format(time.RFC3339),
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next configured reload time after now
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := h.now()

	var next time.Time
	for _, t := range h.reloadTimes {
		parsed, err := time.Parse("15:04", t)
		if err != nil {
			continue
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}

	return next
}
