// Package scheduler provides automated dataset reloads and staleness monitoring
// for the compatibility API. It builds a fresh index on each run and hands it
// to the data store, which swaps it in atomically.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/interfaces"
	"github.com/giygas/compatibility-api/logging"
	"github.com/giygas/compatibility-api/metrics"
	"github.com/giygas/compatibility-api/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// DefaultReloadTimes are the daily reload times used when none are configured
const DefaultReloadTimes = "06:00;18:00"

const loadTimeout = 5 * time.Minute

// Scheduler handles data updates and health monitoring using dependency injection
type Scheduler struct {
	dataStore   interfaces.DataStore
	parser      interfaces.Parser
	validator   interfaces.DataValidator
	indexOpts   []compat.Option
	reloadTimes string
	scheduler   *gocron.Scheduler
	stop        chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// indexOpts are applied to every index it builds.
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser, reloadTimes string, indexOpts ...compat.Option) *Scheduler {
	if reloadTimes == "" {
		reloadTimes = DefaultReloadTimes
	}

	return &Scheduler{
		dataStore:   dataStore,
		parser:      parser,
		validator:   validation.NewDataValidator(),
		indexOpts:   indexOpts,
		reloadTimes: reloadTimes,
		scheduler:   gocron.NewScheduler(time.Local),
		stop:        make(chan struct{}),
	}
}

// Start performs the initial load, then schedules the daily reloads
func (s *Scheduler) Start() error {
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(s.reloadTimes).Do(func() {
		if err := s.updateData(); err != nil {
			// The previous index keeps serving
			logging.Error("Failed to update data", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule updates", "error", err)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// updateData loads the tables, builds a new index and publishes it
func (s *Scheduler) updateData() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting dataset load at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	tables, err := s.parser.ParseTables(ctx)
	if err != nil {
		metrics.DatasetReloadTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to parse tables: %w", err)
	}

	index, err := compat.NewIndex(tables, s.indexOpts...)
	if err != nil {
		metrics.DatasetReloadTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to build index: %w", err)
	}

	report := s.validator.ReportDataQuality(index)
	logReport(report)

	s.dataStore.UpdateData(index, report)

	metrics.DatasetRecords.Set(float64(index.RecordCount()))
	metrics.DatasetReloadTotal.WithLabelValues("success").Inc()

	stats := index.Stats()
	logging.Info("Dataset load completed",
		"duration", time.Since(start).String(),
		"records", stats.Loaded,
		"skipped_missing_drugs", stats.SkippedMissingDrugs,
		"skipped_classification", stats.SkippedClassification,
		"drug_classes", index.DrugClassCount(),
		"version", index.Version(),
	)

	return nil
}

func logReport(report *interfaces.DataQualityReport) {
	if len(report.ClassificationsWithoutLegend) > 0 {
		logging.Warn("Classifications without legend entry",
			"codes", report.ClassificationsWithoutLegend,
		)
	}

	if len(report.UnknownClassifications) > 0 {
		logging.Warn("Unknown classification codes, ranked lowest",
			"codes", report.UnknownClassifications,
		)
	}

	if len(report.QualifiersWithoutLegend) > 0 {
		logging.Warn("Qualifiers without legend entry",
			"count", len(report.QualifiersWithoutLegend),
			"codes", report.QualifiersWithoutLegend,
		)
	}

	if len(report.ReferencesWithoutCitation) > 0 {
		logging.Warn("References without citation",
			"count", len(report.ReferencesWithoutCitation),
			"ids", report.ReferencesWithoutCitation,
		)
	}

	if report.DuplicateRows > 0 {
		logging.Warn("Duplicate compatibility rows", "count", report.DuplicateRows)
	}

	if len(report.ClassifiedDrugsNotInDataset) > 0 {
		logging.Warn("Classified drugs absent from the dataset",
			"count", len(report.ClassifiedDrugsNotInDataset),
			"drugs", report.ClassifiedDrugsNotInDataset,
		)
	}
}

// startHealthMonitoring warns when the scheduled reloads stop landing
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > 25*time.Hour {
					logging.Warn("Dataset hasn't been reloaded in over 25 hours", "last_update", lastUpdate)
				}
			}
		}
	}()
}
