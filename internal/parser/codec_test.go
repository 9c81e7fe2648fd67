package parser

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jujutime/juju/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func normalizedCols() (SchemaVersion, ColumnIndex) {
	return DetectSchema(normalizedColumns)
}

func requireRecordEqual(t *testing.T, want, got models.SessionRecord) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	require.True(t, got.StartDate.Equal(want.StartDate), "start: want %v got %v", want.StartDate, got.StartDate)
	require.True(t, got.EndDate.Equal(want.EndDate), "end: want %v got %v", want.EndDate, got.EndDate)
	assert.Equal(t, want.ProjectName, got.ProjectName)
	assert.Equal(t, want.ProjectID, got.ProjectID)
	assert.Equal(t, want.ActivityTypeID, got.ActivityTypeID)
	assert.Equal(t, want.ProjectPhaseID, got.ProjectPhaseID)
	assert.Equal(t, want.MilestoneText, got.MilestoneText)
	assert.Equal(t, want.Note, got.Note)
	assert.Equal(t, want.Mood, got.Mood)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	version, cols := normalizedCols()

	tests := []struct {
		name string
		rec  models.SessionRecord
	}{
		{
			name: "all fields set",
			rec: models.SessionRecord{
				ID:             "a5f6f4e2",
				StartDate:      time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local),
				EndDate:        time.Date(2025, 3, 1, 11, 45, 30, 0, time.Local),
				ProjectName:    "Website",
				ProjectID:      strptr("p-1"),
				ActivityTypeID: strptr("at-2"),
				ProjectPhaseID: strptr("ph-3"),
				MilestoneText:  strptr("launched beta"),
				Note:           "plain note",
				Mood:           intptr(4),
			},
		},
		{
			name: "optional fields absent",
			rec: models.SessionRecord{
				ID:          "b7c8",
				StartDate:   time.Date(2024, 12, 31, 22, 0, 0, 0, time.Local),
				EndDate:     time.Date(2025, 1, 1, 1, 0, 0, 0, time.Local),
				ProjectName: "Legacy Project",
			},
		},
		{
			name: "notes with commas quotes and newlines",
			rec: models.SessionRecord{
				ID:          "c9d0",
				StartDate:   time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local),
				EndDate:     time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local),
				ProjectName: "He said \"hi\", twice",
				Note:        "line one\nline two, with \"quotes\"\nline three",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Encode(tt.rec)
			got, assigned, err := Decode(row, version, cols, discardLogger())
			require.NoError(t, err)
			assert.False(t, assigned)
			requireRecordEqual(t, tt.rec, got)
		})
	}
}

func TestDecodeLegacyRow(t *testing.T) {
	version, cols := DetectSchema([]string{"id", "date", "start_time", "end_time", "duration_minutes", "project", "notes", "mood"})
	require.Equal(t, SchemaLegacyWithID, version)

	rec, assigned, err := Decode(
		[]string{"s1", "2024-06-01", "09:15", "10:45:30", "90", "Deep Work", "focus block", "5"},
		version, cols, discardLogger())
	require.NoError(t, err)
	assert.False(t, assigned)

	assert.Equal(t, "s1", rec.ID)
	assert.True(t, rec.StartDate.Equal(time.Date(2024, 6, 1, 9, 15, 0, 0, time.Local)))
	assert.True(t, rec.EndDate.Equal(time.Date(2024, 6, 1, 10, 45, 30, 0, time.Local)))
	assert.Equal(t, "Deep Work", rec.ProjectName)
	assert.Equal(t, "focus block", rec.Note)
	require.NotNil(t, rec.Mood)
	assert.Equal(t, 5, *rec.Mood)
	assert.Nil(t, rec.ProjectID)
}

func TestDecodeMidnightCrossing(t *testing.T) {
	version, cols := DetectSchema([]string{"date", "start_time", "end_time", "duration_minutes", "project", "notes", "mood"})
	require.Equal(t, SchemaLegacyNoID, version)

	rec, assigned, err := Decode(
		[]string{"2024-06-01", "23:30", "00:15", "45", "Night Owl", "", ""},
		version, cols, discardLogger())
	require.NoError(t, err)
	assert.True(t, assigned, "legacy-no-id rows get synthetic ids")
	assert.NotEmpty(t, rec.ID)

	assert.Equal(t, 45, rec.DurationMinutes())
	assert.True(t, rec.EndDate.Equal(time.Date(2024, 6, 2, 0, 15, 0, 0, time.Local)))
}

func TestDecodeDoesNotCorrectLateInvertedTimes(t *testing.T) {
	// End before start with an end hour outside [0,4) is a data error,
	// not a midnight crossing; the row decodes as stored.
	version, cols := DetectSchema([]string{"date", "start_time", "end_time", "duration_minutes", "project", "notes", "mood"})

	rec, _, err := Decode(
		[]string{"2024-06-01", "18:00", "09:00", "", "", "", ""},
		version, cols, discardLogger())
	require.NoError(t, err)
	assert.True(t, rec.EndDate.Before(rec.StartDate))
}

func TestDecodeUnparseableDate(t *testing.T) {
	version, cols := DetectSchema([]string{"date", "start_time", "end_time", "duration_minutes", "project", "notes", "mood"})

	_, _, err := Decode(
		[]string{"not-a-date", "09:00", "10:00", "60", "X", "", ""},
		version, cols, discardLogger())
	require.Error(t, err)
}

func TestDecodeEmptyOptionalsAreNil(t *testing.T) {
	version, cols := normalizedCols()

	row := []string{"id1", "2025-01-02 10:00:00", "2025-01-02 11:00:00", "", "", "", "", "", "", ""}
	rec, _, err := Decode(row, version, cols, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, rec.ProjectID)
	assert.Nil(t, rec.ActivityTypeID)
	assert.Nil(t, rec.ProjectPhaseID)
	assert.Nil(t, rec.MilestoneText)
	assert.Nil(t, rec.Mood)
}

func TestDurationIgnoresStoredColumn(t *testing.T) {
	// Stored duration was historically wrong; it is recomputed from the
	// timestamps.
	version, cols := DetectSchema([]string{"id", "date", "start_time", "end_time", "duration_minutes", "project", "notes", "mood"})

	rec, _, err := Decode(
		[]string{"s1", "2024-06-01", "09:00", "10:00", "999", "", "", ""},
		version, cols, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 60, rec.DurationMinutes())
}
