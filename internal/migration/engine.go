package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/parser"
	"github.com/jujutime/juju/internal/registry"
	"github.com/jujutime/juju/internal/storage"
)

// Outcome is the terminal state of one migration run.
type Outcome int

const (
	// OutcomeNoOp means there was nothing to migrate: no legacy file, or
	// year partitions already exist.
	OutcomeNoOp Outcome = iota
	// OutcomeMigrated means the legacy file was converted, verified and
	// deleted.
	OutcomeMigrated
)

// Engine converts the legacy single-file layout (data.csv) into year
// partitions. It runs below the repository cache, straight against the
// store. The legacy file is only ever deleted after the written partitions
// re-parse to the expected record counts; any failure rolls back the files
// written during this run and leaves data.csv untouched. Running it again
// after success, or when there is nothing to do, is a safe no-op.
type Engine struct {
	files    *storage.FileAccess
	store    *storage.CSVStore
	projects registry.ProjectManager
	logger   *slog.Logger
}

// New creates a migration engine. projects may be nil; legacy project names
// then pass through unresolved.
func New(files *storage.FileAccess, store *storage.CSVStore, projects registry.ProjectManager, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{files: files, store: store, projects: projects, logger: logger}
}

// Run executes the migration state machine once.
func (e *Engine) Run(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeNoOp, err
	}

	legacyPath := storage.LegacyPath(e.store.BaseDir())
	if !e.files.Exists(legacyPath) {
		return OutcomeNoOp, nil
	}

	years, err := storage.AvailableYears(e.store.BaseDir())
	if err != nil {
		return OutcomeNoOp, err
	}
	if len(years) > 0 {
		e.logger.Info("year partitions already exist, leaving legacy file alone",
			"years", len(years))
		return OutcomeNoOp, nil
	}

	content, err := e.files.Read(legacyPath)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("read legacy file: %w", err)
	}
	records, report, err := parser.ParseSessions(content, e.logger)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("parse legacy file: %w", err)
	}
	if report.Skipped > 0 {
		e.logger.Warn("legacy rows skipped during migration", "skipped", report.Skipped)
	}

	e.resolveProjects(records)

	byYear := make(map[int][]models.SessionRecord)
	for _, rec := range records {
		byYear[rec.Year()] = append(byYear[rec.Year()], rec)
	}

	var written []int
	for _, year := range sortedYears(byYear) {
		yearRecords := byYear[year]
		sort.Slice(yearRecords, func(i, j int) bool {
			return yearRecords[i].StartDate.Before(yearRecords[j].StartDate)
		})
		encoded, err := parser.EncodeSessions(yearRecords)
		if err != nil {
			e.rollback(written)
			return OutcomeNoOp, fmt.Errorf("encode year %d: %w", year, err)
		}
		if err := e.store.WriteYear(year, encoded); err != nil {
			e.rollback(written)
			return OutcomeNoOp, fmt.Errorf("write year %d: %w", year, err)
		}
		written = append(written, year)
	}

	if err := e.verify(byYear, written); err != nil {
		e.rollback(written)
		return OutcomeNoOp, err
	}

	if err := e.files.Remove(legacyPath); err != nil {
		// Partitions are verified; a leftover legacy file is harmless
		// because the next run sees the year files and no-ops.
		e.logger.Warn("could not delete legacy file", "err", err)
	}

	e.logger.Info("legacy migration complete",
		"records", len(records), "years", len(written))
	return OutcomeMigrated, nil
}

// resolveProjects maps legacy free-text project names to registry IDs,
// creating projects on first sight. The name stays populated as a display
// cache so migrated files remain diffable against exports.
func (e *Engine) resolveProjects(records []models.SessionRecord) {
	if e.projects == nil {
		return
	}
	resolved := make(map[string]string)
	for i := range records {
		rec := &records[i]
		if rec.ProjectID != nil || rec.ProjectName == "" {
			continue
		}
		id, ok := resolved[rec.ProjectName]
		if !ok {
			project, err := e.projects.LookupProjectByName(rec.ProjectName)
			if err == nil && project == nil {
				project, err = e.projects.CreateProject(rec.ProjectName)
			}
			if err != nil || project == nil {
				e.logger.Warn("could not resolve legacy project", "name", rec.ProjectName, "err", err)
				continue
			}
			id = project.ID
			resolved[rec.ProjectName] = id
		}
		rec.ProjectID = &id
	}
}

// verify re-reads every written partition and re-parses it; the decoded
// record count must exactly match the count grouped into that year.
func (e *Engine) verify(byYear map[int][]models.SessionRecord, written []int) error {
	for _, year := range written {
		content, err := e.store.ReadYear(year)
		if err != nil {
			return fmt.Errorf("verify year %d: %w", year, err)
		}
		parsed, _, err := parser.ParseSessions(content, e.logger)
		if err != nil {
			return fmt.Errorf("verify year %d: %w", year, err)
		}
		if len(parsed) != len(byYear[year]) {
			return fmt.Errorf("verify year %d: wrote %d records, re-read %d",
				year, len(byYear[year]), len(parsed))
		}
	}
	return nil
}

// rollback deletes the partition files written during this run.
func (e *Engine) rollback(written []int) {
	for _, year := range written {
		path := storage.PathForYear(e.store.BaseDir(), year)
		if err := e.files.Remove(path); err != nil {
			e.logger.Warn("rollback could not remove year file", "year", year, "err", err)
		}
	}
	if len(written) > 0 {
		e.logger.Info("rolled back partial migration", "years", len(written))
	}
}

func sortedYears(byYear map[int][]models.SessionRecord) []int {
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
