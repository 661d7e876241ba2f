// Package data provides thread-safe storage of the loaded compatibility index.
// The index and its quality report live behind atomic values so a reload swaps
// them in one step while queries keep reading the previous index.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/interfaces"
	"github.com/giygas/compatibility-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// snapshot pairs an index with the report computed from it
type snapshot struct {
	index  *compat.Index
	report *interfaces.DataQualityReport
}

// DataContainer holds the current snapshot with atomic pointers for zero-downtime updates
type DataContainer struct {
	current         atomic.Value // snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with no index loaded
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.current.Store(snapshot{})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func (dc *DataContainer) load() snapshot {
	if v := dc.current.Load(); v != nil {
		if s, ok := v.(snapshot); ok {
			return s
		}
	}
	return snapshot{}
}

// GetIndex returns the current index, nil before the first load
func (dc *DataContainer) GetIndex() *compat.Index {
	idx := dc.load().index
	if idx == nil {
		logging.Warn("Compatibility index is not loaded")
	}
	return idx
}

// GetReport returns the data quality report of the current index
func (dc *DataContainer) GetReport() *interfaces.DataQualityReport {
	return dc.load().report
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the index and its report
func (dc *DataContainer) UpdateData(index *compat.Index, report *interfaces.DataQualityReport) {
	dc.current.Store(snapshot{index: index, report: report})
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
