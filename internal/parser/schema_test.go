package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSchema(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   SchemaVersion
	}{
		{
			name:   "normalized",
			header: "id,start_date,end_date,project,project_id,activity_type_id,project_phase_id,milestone_text,notes,mood",
			want:   SchemaNormalized,
		},
		{
			name:   "intermediate with reference columns",
			header: "id,start_date,end_date,project,project_id,activity_type_id,notes,mood",
			want:   SchemaIntermediate,
		},
		{
			name:   "intermediate without id",
			header: "start_date,end_date,project,notes,mood",
			want:   SchemaIntermediate,
		},
		{
			name:   "legacy with id",
			header: "id,date,start_time,end_time,duration_minutes,project,notes,mood",
			want:   SchemaLegacyWithID,
		},
		{
			name:   "legacy minimal",
			header: "date,start_time,end_time,duration_minutes,project,notes,mood",
			want:   SchemaLegacyNoID,
		},
		{
			name:   "id not in first column is not a has-id variant",
			header: "date,id,start_time,end_time,project,notes",
			want:   SchemaLegacyNoID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, _ := DetectSchema(strings.Split(tt.header, ","))
			assert.Equal(t, tt.want, version)
		})
	}
}

func TestDetectSchemaColumnIndex(t *testing.T) {
	// Legacy headers may order columns differently than the default.
	version, cols := DetectSchema([]string{"date", "project", "notes", "end_time", "start_time"})
	require.Equal(t, SchemaLegacyNoID, version)

	assert.Equal(t, 0, cols["date"])
	assert.Equal(t, 4, cols["start_time"])
	assert.Equal(t, 3, cols["end_time"])
	assert.Equal(t, 1, cols["project"])
	assert.False(t, cols.Has("mood"))
}

func TestDetectSchemaIsCaseInsensitive(t *testing.T) {
	version, cols := DetectSchema([]string{"ID", " Start_Date ", "End_Date", "Project", "project_id", "activity_type_id", "project_phase_id", "milestone_text", "Notes", "MOOD"})
	assert.Equal(t, SchemaNormalized, version)
	assert.True(t, cols.Has("start_date"))
	assert.True(t, cols.Has("mood"))
}
