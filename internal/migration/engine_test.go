package migration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jujutime/juju/internal/parser"
	"github.com/jujutime/juju/internal/registry"
	"github.com/jujutime/juju/internal/storage"
)

const legacyContent = "id,date,start_time,end_time,duration_minutes,project,notes,mood\n" +
	"s1,2024-03-01,09:00,10:00,60,Website,first,\n" +
	"s2,2025-01-10,14:00,15:30,90,Backend,second,4\n"

type testSetup struct {
	dir    string
	files  *storage.FileAccess
	store  *storage.CSVStore
	engine *Engine
	reg    *registry.MemoryRegistry
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	dir := t.TempDir()
	files := storage.NewFileAccess()
	store := storage.NewCSVStore(files, dir)
	reg := registry.NewMemoryRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testSetup{
		dir:    dir,
		files:  files,
		store:  store,
		engine: New(files, store, reg, logger),
		reg:    reg,
	}
}

func (s *testSetup) writeLegacy(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(storage.LegacyPath(s.dir), []byte(content), 0o600))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrateBasicLegacyFile(t *testing.T) {
	s := newTestSetup(t)
	s.writeLegacy(t, legacyContent)

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, outcome)

	// One file per year, legacy file gone.
	assert.NoFileExists(t, storage.LegacyPath(s.dir))
	assert.FileExists(t, filepath.Join(s.dir, "2024-data.csv"))
	assert.FileExists(t, filepath.Join(s.dir, "2025-data.csv"))

	for year, wantNotes := range map[int]string{2024: "first", 2025: "second"} {
		content, err := s.store.ReadYear(year)
		require.NoError(t, err)
		records, report, err := parser.ParseSessions(content, discardLogger())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, wantNotes, records[0].Note)
		assert.Equal(t, parser.SchemaNormalized, report.Schema)
		assert.False(t, report.NeedsRewrite)
	}
}

func TestMigrateResolvesProjects(t *testing.T) {
	s := newTestSetup(t)
	s.writeLegacy(t, legacyContent)

	_, err := s.engine.Run(context.Background())
	require.NoError(t, err)

	website, err := s.reg.LookupProjectByName("Website")
	require.NoError(t, err)
	require.NotNil(t, website)

	content, err := s.store.ReadYear(2024)
	require.NoError(t, err)
	records, _, err := parser.ParseSessions(content, discardLogger())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ProjectID)
	assert.Equal(t, website.ID, *records[0].ProjectID)
	assert.Equal(t, "Website", records[0].ProjectName)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestSetup(t)
	s.writeLegacy(t, legacyContent)

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeMigrated, outcome)

	first2024, err := os.ReadFile(filepath.Join(s.dir, "2024-data.csv"))
	require.NoError(t, err)

	outcome, err = s.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoOp, outcome)

	second2024, err := os.ReadFile(filepath.Join(s.dir, "2024-data.csv"))
	require.NoError(t, err)
	assert.Equal(t, first2024, second2024, "second run must not touch the files")
}

func TestMigrateNoLegacyFile(t *testing.T) {
	s := newTestSetup(t)

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoOp, outcome)
}

func TestMigrateSkipsWhenYearFilesExist(t *testing.T) {
	s := newTestSetup(t)
	s.writeLegacy(t, legacyContent)
	require.NoError(t, s.store.WriteYear(2023, parser.NormalizedHeader()))

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoOp, outcome)

	// The legacy file survives untouched.
	assert.FileExists(t, storage.LegacyPath(s.dir))
}

func TestMigrateSkipsMalformedRows(t *testing.T) {
	s := newTestSetup(t)
	s.writeLegacy(t, legacyContent+"s3,not-a-date,09:00,10:00,60,Website,bad,\n")

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, outcome)

	content, err := s.store.ReadYear(2024)
	require.NoError(t, err)
	records, _, err := parser.ParseSessions(content, discardLogger())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMigrateGroupsMidnightCrossers(t *testing.T) {
	// A session starting Dec 31 and ending past midnight files under its
	// start year.
	s := newTestSetup(t)
	s.writeLegacy(t, "id,date,start_time,end_time,duration_minutes,project,notes,mood\n"+
		"s1,2024-12-31,23:30,00:15,45,Night,late,\n")

	outcome, err := s.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeMigrated, outcome)

	assert.FileExists(t, filepath.Join(s.dir, "2024-data.csv"))
	assert.NoFileExists(t, filepath.Join(s.dir, "2025-data.csv"))

	content, err := s.store.ReadYear(2024)
	require.NoError(t, err)
	records, _, err := parser.ParseSessions(content, discardLogger())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 45, records[0].DurationMinutes())
}
