package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jujutime/juju/internal/models"
)

func TestParseSessionsEmptyContent(t *testing.T) {
	records, report, err := ParseSessions("", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, report.NeedsRewrite)

	records, _, err = ParseSessions("\n\n  \n", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseSessionsSkipsMalformedRows(t *testing.T) {
	content := "id,date,start_time,end_time,duration_minutes,project,notes,mood\n" +
		"s1,2024-03-01,09:00,10:00,60,Website,first,\n" +
		"s2,garbage,09:00,10:00,60,Website,broken,\n" +
		"s3,2024-03-02,14:00,15:30,90,Website,third,4\n"

	records, report, err := ParseSessions(content, discardLogger())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "s1", records[0].ID)
	assert.Equal(t, "s3", records[1].ID)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.NeedsRewrite)
}

func TestParseSessionsAssignsSyntheticIDs(t *testing.T) {
	content := "date,start_time,end_time,duration_minutes,project,notes,mood\n" +
		"2024-03-01,09:00,10:00,60,Website,,\n" +
		"2024-03-02,11:00,12:00,60,Website,,\n"

	records, report, err := ParseSessions(content, discardLogger())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.NotEmpty(t, records[0].ID)
	assert.NotEmpty(t, records[1].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, SchemaLegacyNoID, report.Schema)
	assert.True(t, report.NeedsRewrite)
}

func TestParseSessionsToleratesLeadingBlankLines(t *testing.T) {
	// Old app versions wrote stray blank lines ahead of the header.
	content := "\n\nid,start_date,end_date,project,project_id,activity_type_id,project_phase_id,milestone_text,notes,mood\n" +
		"s1,2025-02-01 09:00:00,2025-02-01 10:00:00,Website,,,,,,\n"

	records, report, err := ParseSessions(content, discardLogger())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, SchemaNormalized, report.Schema)
}

func TestEncodeParseFileRoundTrip(t *testing.T) {
	in := []models.SessionRecord{
		{
			ID:          "r1",
			StartDate:   time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local),
			EndDate:     time.Date(2025, 2, 1, 10, 30, 0, 0, time.Local),
			ProjectName: "Website",
			ProjectID:   strptr("p-1"),
			Note:        "notes with\nnewline, comma and \"quotes\"",
			Mood:        intptr(3),
		},
		{
			ID:        "r2",
			StartDate: time.Date(2025, 2, 2, 13, 0, 0, 0, time.Local),
			EndDate:   time.Date(2025, 2, 2, 13, 25, 0, 0, time.Local),
		},
	}

	content, err := EncodeSessions(in)
	require.NoError(t, err)

	out, report, err := ParseSessions(content, discardLogger())
	require.NoError(t, err)
	assert.False(t, report.NeedsRewrite, "canonical output must re-read clean")
	require.Len(t, out, len(in))
	for i := range in {
		requireRecordEqual(t, in[i], out[i])
	}
}

func TestEncodeFoldsCRLFNewlines(t *testing.T) {
	// The csv reader folds a quoted CRLF to LF on read, so encode does the
	// same and the written file re-reads byte for byte.
	in := []models.SessionRecord{
		{
			ID:            "r1",
			StartDate:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local),
			EndDate:       time.Date(2025, 2, 1, 10, 0, 0, 0, time.Local),
			MilestoneText: strptr("shipped\r\nv2"),
			Note:          "pasted from\r\nwindows",
		},
	}

	first, err := EncodeSessions(in)
	require.NoError(t, err)

	out, _, err := ParseSessions(first, discardLogger())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "pasted from\nwindows", out[0].Note)
	require.NotNil(t, out[0].MilestoneText)
	assert.Equal(t, "shipped\nv2", *out[0].MilestoneText)

	second, err := EncodeSessions(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizedHeader(t *testing.T) {
	assert.Equal(t,
		"id,start_date,end_date,project,project_id,activity_type_id,project_phase_id,milestone_text,notes,mood\n",
		NormalizedHeader())
}
