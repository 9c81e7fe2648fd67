package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jujutime/juju/internal/models"
)

const (
	// TimestampLayout is the normalized timestamp format: local time,
	// second precision, no timezone offset stored.
	TimestampLayout = "2006-01-02 15:04:05"
	// DateLayout is the legacy date-only column format.
	DateLayout = "2006-01-02"
)

// Encode converts a record to one row under the normalized schema. Legacy
// formats are never written: every save migrates the row forward.
func Encode(r models.SessionRecord) []string {
	return []string{
		r.ID,
		r.StartDate.Format(TimestampLayout),
		r.EndDate.Format(TimestampLayout),
		flatNewlines(r.ProjectName),
		stringOrEmpty(r.ProjectID),
		stringOrEmpty(r.ActivityTypeID),
		stringOrEmpty(r.ProjectPhaseID),
		flatNewlines(stringOrEmpty(r.MilestoneText)),
		flatNewlines(r.Note),
		moodString(r.Mood),
	}
}

// flatNewlines folds CRLF pairs in free text to LF. The csv reader does the
// same inside quoted fields, so written text reads back byte for byte.
func flatNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Decode parses one row under a known schema version and column map.
// assignedID reports that the row carried no usable id and got a fresh one,
// which means the file needs a canonical rewrite to make the id durable.
func Decode(row []string, version SchemaVersion, cols ColumnIndex, logger *slog.Logger) (rec models.SessionRecord, assignedID bool, err error) {
	if version.IsLegacy() {
		rec, err = decodeLegacy(row, cols, logger)
	} else {
		rec, err = decodeTimestampPair(row, cols)
	}
	if err != nil {
		return models.SessionRecord{}, false, err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
		assignedID = true
	}
	return rec, assignedID, nil
}

// decodeTimestampPair handles the intermediate and normalized layouts, which
// both store full start_date/end_date timestamps.
func decodeTimestampPair(row []string, cols ColumnIndex) (models.SessionRecord, error) {
	start, err := parseTimestamp(cell(row, cols, "start_date"))
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseTimestamp(cell(row, cols, "end_date"))
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("end_date: %w", err)
	}

	return models.SessionRecord{
		ID:             cell(row, cols, "id"),
		StartDate:      start,
		EndDate:        end,
		ProjectName:    cell(row, cols, "project"),
		ProjectID:      optional(row, cols, "project_id"),
		ActivityTypeID: optional(row, cols, "activity_type_id"),
		ProjectPhaseID: optional(row, cols, "project_phase_id"),
		MilestoneText:  optional(row, cols, "milestone_text"),
		Note:           cell(row, cols, "notes"),
		Mood:           parseMood(row, cols),
	}, nil
}

// decodeLegacy handles the single-date layout: date,start_time,end_time.
// Sessions recorded across midnight have an end time numerically before the
// start time; those are corrected by a bounded heuristic, see correctMidnight.
func decodeLegacy(row []string, cols ColumnIndex, logger *slog.Logger) (models.SessionRecord, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(cell(row, cols, "date")), time.Local)
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("date: %w", err)
	}
	start, err := parseClock(day, cell(row, cols, "start_time"))
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := parseClock(day, cell(row, cols, "end_time"))
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("end_time: %w", err)
	}

	end = correctMidnight(start, end, storedDuration(row, cols), logger)

	return models.SessionRecord{
		ID:          cell(row, cols, "id"),
		StartDate:   start,
		EndDate:     end,
		ProjectName: cell(row, cols, "project"),
		Note:        cell(row, cols, "notes"),
		Mood:        parseMood(row, cols),
	}, nil
}

// correctMidnight applies the midnight-crossing heuristic: an end instant
// strictly before the start with an end hour in [0,4) is treated as the next
// day. Corrections that drift more than an hour from the stored duration
// column are logged; smaller ones are applied silently. Do not widen the
// hour window without product confirmation.
func correctMidnight(start, end time.Time, storedMinutes *int, logger *slog.Logger) time.Time {
	if !end.Before(start) || end.Hour() >= 4 {
		return end
	}

	corrected := end.Add(24 * time.Hour)
	if storedMinutes != nil {
		actual := int(corrected.Sub(start).Round(time.Minute) / time.Minute)
		if delta := actual - *storedMinutes; delta > 60 || delta < -60 {
			logger.Warn("midnight correction diverges from stored duration",
				"start", start.Format(TimestampLayout),
				"corrected_minutes", actual,
				"stored_minutes", *storedMinutes)
		}
	}
	return corrected
}

// parseTimestamp accepts the normalized layout with or without seconds.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	}
	return t, nil
}

// parseClock combines a day with an HH:mm or HH:mm:ss time-of-day value.
func parseClock(day time.Time, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var clock time.Time
	var err error
	if clock, err = time.Parse("15:04:05", s); err != nil {
		if clock, err = time.Parse("15:04", s); err != nil {
			return time.Time{}, fmt.Errorf("unparseable time %q", s)
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local), nil
}

// cell returns the raw value of a named column, or "" when the column is
// absent from this schema or the row is short.
func cell(row []string, cols ColumnIndex, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// optional returns nil for a missing column or empty cell, so "field absent"
// never degrades into a set-but-empty string.
func optional(row []string, cols ColumnIndex, name string) *string {
	v := cell(row, cols, name)
	if v == "" {
		return nil
	}
	return &v
}

// parseMood reads the optional mood rating; unparseable values decode to nil.
func parseMood(row []string, cols ColumnIndex) *int {
	v := strings.TrimSpace(cell(row, cols, "mood"))
	if v == "" {
		return nil
	}
	mood, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &mood
}

// storedDuration reads the legacy duration_minutes column. It is never
// trusted as the session duration, only consulted to size the midnight
// correction for logging.
func storedDuration(row []string, cols ColumnIndex) *int {
	v := strings.TrimSpace(cell(row, cols, "duration_minutes"))
	if v == "" {
		return nil
	}
	minutes, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &minutes
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func moodString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
