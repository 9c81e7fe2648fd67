package models

import (
	"errors"
	"time"
)

// SessionRecord represents one immutable block of tracked work time.
//
// Records are value types: edits replace the whole record by ID, they never
// mutate a stored record in place. Optional fields added by later schema
// versions are pointers; nil means the record pre-dates that field.
type SessionRecord struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// ProjectName is the free-text project label from legacy files. Once
	// ProjectID is set it is only a display cache; identity is the ID.
	ProjectName string  `json:"project"`
	ProjectID   *string `json:"project_id"`

	ActivityTypeID *string `json:"activity_type_id"`
	ProjectPhaseID *string `json:"project_phase_id"`
	MilestoneText  *string `json:"milestone_text"`

	Note string `json:"notes"`
	Mood *int   `json:"mood"`
}

// DurationMinutes returns the session length rounded to whole minutes.
// Duration is always derived from the timestamps; stored duration columns
// were historically wrong for sessions crossing midnight.
func (r SessionRecord) DurationMinutes() int {
	return int(r.EndDate.Sub(r.StartDate).Round(time.Minute) / time.Minute)
}

// Year returns the calendar year of the start date, which is the record's
// partition key. Sessions crossing a year boundary file under their start year.
func (r SessionRecord) Year() int {
	return r.StartDate.Year()
}

// Validate reports why a record must not be persisted, or nil.
func (r SessionRecord) Validate() error {
	if r.ID == "" {
		return errors.New("empty session id")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("missing start or end timestamp")
	}
	if !r.EndDate.After(r.StartDate) {
		return errors.New("end date is not after start date")
	}
	return nil
}

// Overlaps reports whether the session overlaps the half-open interval
// [start, end): record.start < end && record.end > start.
func (r SessionRecord) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && r.EndDate.After(start)
}
