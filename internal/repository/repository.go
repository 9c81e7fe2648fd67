package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/parser"
	"github.com/jujutime/juju/internal/registry"
	"github.com/jujutime/juju/internal/storage"
)

// Repository is the CRUD surface over the year-partitioned session files.
// All collaborators arrive by injection; there are no package globals.
//
// Concurrency: loads may run concurrently and fan out across year files;
// mutations are serialized process-wide. A load observes a consistent
// snapshot taken before or after a concurrent mutation, never a mix.
type Repository struct {
	store    *storage.CSVStore
	projects registry.ProjectManager
	logger   *slog.Logger

	writeMu sync.Mutex // serializes update/delete/save/append

	cacheMu sync.RWMutex
	cache   []models.SessionRecord
	cached  bool

	obsMu     sync.Mutex
	observers map[int]func(ChangeEvent)
	nextObs   int
}

// New creates a repository over the given store. projects may be nil when no
// registry is available; project validation is then skipped.
func New(store *storage.CSVStore, projects registry.ProjectManager, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		store:     store,
		projects:  projects,
		logger:    logger,
		observers: make(map[int]func(ChangeEvent)),
	}
}

// yearLoad is one year partition's parse result.
type yearLoad struct {
	year    int
	records []models.SessionRecord
	report  parser.ParseReport
	err     error
}

// LoadAll returns every stored session, sorted by start date descending.
// Year files load concurrently (each load touches a disjoint file), malformed
// rows are skipped, and files not in canonical form are rewritten in place.
func (r *Repository) LoadAll(ctx context.Context) ([]models.SessionRecord, error) {
	if recs, ok := r.cachedSnapshot(); ok {
		return recs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	years, err := storage.AvailableYears(r.store.BaseDir())
	if err != nil {
		return nil, err
	}

	loads := make([]yearLoad, len(years))
	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		go func(i, year int) {
			defer wg.Done()
			records, report, err := r.loadYear(year)
			loads[i] = yearLoad{year: year, records: records, report: report, err: err}
		}(i, year)
	}
	wg.Wait()

	var all []models.SessionRecord
	var heal []yearLoad
	for _, load := range loads {
		if load.err != nil {
			// One unreadable partition must not hide the others.
			r.logger.Warn("skipping unreadable year file", "year", load.year, "err", load.err)
			continue
		}
		all = append(all, load.records...)
		if load.report.NeedsRewrite {
			heal = append(heal, load)
		}
	}

	if len(heal) > 0 {
		// Self-heal rewrites are mutations and queue behind any in-flight
		// mutation.
		r.writeMu.Lock()
		for _, load := range heal {
			if err := r.rewriteYear(load.year, load.records); err != nil {
				r.logger.Warn("self-heal rewrite failed", "year", load.year, "err", err)
			} else {
				r.logger.Info("rewrote year file in canonical form",
					"year", load.year, "schema", load.report.Schema.String(), "skipped_rows", load.report.Skipped)
			}
		}
		r.writeMu.Unlock()
	}

	sortByStartDesc(all)
	r.fillCache(all)
	return copyRecords(all), nil
}

// LoadCurrentYear loads only this year's partition, for fast startup paths.
func (r *Repository) LoadCurrentYear(ctx context.Context) ([]models.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, _, err := r.loadYear(time.Now().Year())
	if err != nil {
		return nil, err
	}
	sortByStartDesc(records)
	return records, nil
}

// LoadCurrentWeek loads the sessions overlapping the current ISO week
// (Monday through Sunday, local time).
func (r *Repository) LoadCurrentWeek(ctx context.Context) ([]models.SessionRecord, error) {
	return r.loadWeek(ctx, parser.StartOfWeek(time.Now()))
}

// loadWeek returns the sessions overlapping [weekStart, weekStart+7d).
// Records file under their start year, so a session crossing New Year into
// the week lives in the partition before weekStart's; that partition is
// consulted too. Missing partitions read as empty.
func (r *Repository) loadWeek(ctx context.Context, weekStart time.Time) ([]models.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weekEnd := weekStart.AddDate(0, 0, 7)

	var result []models.SessionRecord
	for year := weekStart.Year() - 1; year <= weekEnd.Year(); year++ {
		records, _, err := r.loadYear(year)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.Overlaps(weekStart, weekEnd) {
				result = append(result, rec)
			}
		}
	}
	sortByStartDesc(result)
	return result, nil
}

// Add validates and appends a single new record to its year partition.
func (r *Repository) Add(ctx context.Context, rec models.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	row, err := parser.EncodeRow(rec)
	if err != nil {
		return err
	}
	if err := r.store.AppendYear(rec.Year(), parser.NormalizedHeader(), row); err != nil {
		return err
	}

	r.invalidateCache()
	r.notify(ChangeEvent{Op: OpAdd, RecordID: rec.ID})
	return nil
}

// loadYear reads and parses one partition. A missing file is an empty year.
func (r *Repository) loadYear(year int) ([]models.SessionRecord, parser.ParseReport, error) {
	content, err := r.store.ReadYear(year)
	if err != nil {
		return nil, parser.ParseReport{}, err
	}
	return parser.ParseSessions(content, r.logger.With("year", year))
}

// rewriteYear writes a year file back in canonical form, records sorted by
// start date ascending for stable diffs.
func (r *Repository) rewriteYear(year int, records []models.SessionRecord) error {
	sorted := copyRecords(records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })
	content, err := parser.EncodeSessions(sorted)
	if err != nil {
		return err
	}
	return r.store.WriteYear(year, content)
}

func (r *Repository) cachedSnapshot() ([]models.SessionRecord, bool) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	if !r.cached {
		return nil, false
	}
	return copyRecords(r.cache), true
}

func (r *Repository) fillCache(records []models.SessionRecord) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache = copyRecords(records)
	r.cached = true
}

func (r *Repository) invalidateCache() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache = nil
	r.cached = false
}

func sortByStartDesc(records []models.SessionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartDate.After(records[j].StartDate)
	})
}

func copyRecords(records []models.SessionRecord) []models.SessionRecord {
	out := make([]models.SessionRecord, len(records))
	copy(out, records)
	return out
}
