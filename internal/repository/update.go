package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/storage"
)

// FieldUpdate is a typed, exhaustive set of single-field edits. Each variant
// carries its payload; applying one produces a new record value, never an
// in-place mutation. This replaces a stringly-typed "field name + value" API.
type FieldUpdate interface {
	apply(models.SessionRecord) models.SessionRecord
	Field() string
}

// SetStartDate moves the session start. Duration is derived from the
// timestamps, so it stays correct by construction. Moving the start across a
// year boundary relocates the record to the matching partition.
type SetStartDate struct{ Value time.Time }

func (u SetStartDate) apply(r models.SessionRecord) models.SessionRecord {
	r.StartDate = u.Value
	return r
}
func (u SetStartDate) Field() string { return "start_date" }

// SetEndDate moves the session end.
type SetEndDate struct{ Value time.Time }

func (u SetEndDate) apply(r models.SessionRecord) models.SessionRecord {
	r.EndDate = u.Value
	return r
}
func (u SetEndDate) Field() string { return "end_date" }

// SetNotes replaces the free-text notes.
type SetNotes struct{ Value string }

func (u SetNotes) apply(r models.SessionRecord) models.SessionRecord {
	r.Note = u.Value
	return r
}
func (u SetNotes) Field() string { return "notes" }

// SetMood sets or clears the mood rating.
type SetMood struct{ Value *int }

func (u SetMood) apply(r models.SessionRecord) models.SessionRecord {
	r.Mood = u.Value
	return r
}
func (u SetMood) Field() string { return "mood" }

// SetProject reassigns the session to a project. The name travels along as a
// display cache; identity is the ID. Changing project clears the phase since
// phases belong to a single project.
type SetProject struct {
	ID   string
	Name string
}

func (u SetProject) apply(r models.SessionRecord) models.SessionRecord {
	id := u.ID
	r.ProjectID = &id
	r.ProjectName = u.Name
	r.ProjectPhaseID = nil
	return r
}
func (u SetProject) Field() string { return "project_id" }

// SetActivityType sets or clears the activity type reference.
type SetActivityType struct{ Value *string }

func (u SetActivityType) apply(r models.SessionRecord) models.SessionRecord {
	r.ActivityTypeID = u.Value
	return r
}
func (u SetActivityType) Field() string { return "activity_type_id" }

// SetProjectPhase sets or clears the phase. A non-nil phase must belong to
// the record's project; Update validates that against the project registry.
type SetProjectPhase struct{ Value *string }

func (u SetProjectPhase) apply(r models.SessionRecord) models.SessionRecord {
	r.ProjectPhaseID = u.Value
	return r
}
func (u SetProjectPhase) Field() string { return "project_phase_id" }

// SetMilestone sets or clears the milestone annotation.
type SetMilestone struct{ Value *string }

func (u SetMilestone) apply(r models.SessionRecord) models.SessionRecord {
	r.MilestoneText = u.Value
	return r
}
func (u SetMilestone) Field() string { return "milestone_text" }

// Update replaces one field on the record with the given id and persists the
// containing year file. When the start date's year changes, the record moves
// to the new year's partition and is removed from the old one. Returns false
// when no record has that id.
func (r *Repository) Update(ctx context.Context, id string, upd FieldUpdate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	year, records, idx, err := r.locate(id)
	if err != nil {
		return false, err
	}
	if idx < 0 {
		return false, nil
	}

	updated := upd.apply(records[idx])
	if err := updated.Validate(); err != nil {
		return false, fmt.Errorf("update %s of %s: %w", upd.Field(), id, err)
	}
	if phase, ok := upd.(SetProjectPhase); ok && phase.Value != nil {
		if err := r.checkPhase(*phase.Value, updated.ProjectID); err != nil {
			return false, err
		}
	}

	newYear := updated.Year()
	if newYear == year {
		records[idx] = updated
		if err := r.rewriteYear(year, records); err != nil {
			return false, err
		}
	} else {
		// Relocate across partitions: write the destination year before
		// touching the source. A failure between the two writes leaves a
		// stale copy in the old year, never a lost record.
		destination, _, err := r.loadYear(newYear)
		if err != nil {
			return false, err
		}
		destination = append(destination, updated)
		if err := r.rewriteYear(newYear, destination); err != nil {
			return false, err
		}
		remaining := append(records[:idx:idx], records[idx+1:]...)
		if err := r.rewriteYear(year, remaining); err != nil {
			return false, err
		}
	}

	r.invalidateCache()
	r.notify(ChangeEvent{Op: OpUpdate, RecordID: id})
	return true, nil
}

// Delete removes the record with the given id from its year partition.
// Deleting an absent id returns false, not an error.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	year, records, idx, err := r.locate(id)
	if err != nil {
		return false, err
	}
	if idx < 0 {
		return false, nil
	}

	remaining := append(records[:idx:idx], records[idx+1:]...)
	if err := r.rewriteYear(year, remaining); err != nil {
		return false, err
	}

	r.invalidateCache()
	r.notify(ChangeEvent{Op: OpDelete, RecordID: id})
	return true, nil
}

// DroppedRecord explains why one record was excluded from a batch save.
type DroppedRecord struct {
	ID     string
	Reason string
}

// SaveReport aggregates the outcome of a SaveAll.
type SaveReport struct {
	Saved   int
	Dropped []DroppedRecord
}

// SaveAll validates the given records, drops invalid ones with a logged
// reason, groups survivors by start-date year and rewrites each affected
// year file completely.
func (r *Repository) SaveAll(ctx context.Context, records []models.SessionRecord) (SaveReport, error) {
	if err := ctx.Err(); err != nil {
		return SaveReport{}, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var report SaveReport
	byYear := make(map[int][]models.SessionRecord)
	for _, rec := range records {
		if err := r.validateForSave(rec); err != nil {
			report.Dropped = append(report.Dropped, DroppedRecord{ID: rec.ID, Reason: err.Error()})
			r.logger.Warn("dropping invalid session from save", "id", rec.ID, "reason", err)
			continue
		}
		byYear[rec.Year()] = append(byYear[rec.Year()], rec)
		report.Saved++
	}

	for year, yearRecords := range byYear {
		if err := r.rewriteYear(year, yearRecords); err != nil {
			return report, fmt.Errorf("write year %d: %w", year, err)
		}
	}

	r.invalidateCache()
	r.notify(ChangeEvent{Op: OpSaveAll})
	return report, nil
}

// validateForSave runs record validation plus the project reference check.
func (r *Repository) validateForSave(rec models.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ProjectID != nil && r.projects != nil {
		ok, err := r.projects.ProjectExists(*rec.ProjectID)
		if err != nil {
			return fmt.Errorf("project lookup: %w", err)
		}
		if !ok {
			return fmt.Errorf("unknown project %s", *rec.ProjectID)
		}
	}
	return nil
}

// checkPhase validates that a phase belongs to the record's project.
func (r *Repository) checkPhase(phaseID string, projectID *string) error {
	if r.projects == nil {
		return nil
	}
	if projectID == nil {
		return fmt.Errorf("phase %s set on a session with no project", phaseID)
	}
	ok, err := r.projects.PhaseBelongsToProject(phaseID, *projectID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("phase %s does not belong to project %s", phaseID, *projectID)
	}
	return nil
}

// locate finds the record's year partition and index within it. idx is -1
// when no partition contains the id.
func (r *Repository) locate(id string) (year int, records []models.SessionRecord, idx int, err error) {
	years, err := storage.AvailableYears(r.store.BaseDir())
	if err != nil {
		return 0, nil, -1, err
	}
	for _, y := range years {
		recs, _, err := r.loadYear(y)
		if err != nil {
			return 0, nil, -1, err
		}
		for i, rec := range recs {
			if rec.ID == id {
				return y, recs, i, nil
			}
		}
	}
	return 0, nil, -1, nil
}
