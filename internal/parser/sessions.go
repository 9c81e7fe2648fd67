package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jujutime/juju/internal/models"
)

// ParseReport summarizes one file parse for the caller.
type ParseReport struct {
	Schema  SchemaVersion
	Skipped int
	// NeedsRewrite is set when the file is not in the canonical format:
	// an old schema version, rows that failed to decode, or rows that
	// received synthetic IDs. Writing the file back in normalized form
	// self-heals it.
	NeedsRewrite bool
}

// NormalizedHeader returns the canonical header line, newline-terminated.
func NormalizedHeader() string {
	return strings.Join(normalizedColumns, ",") + "\n"
}

// ParseSessions decodes a whole session file. Malformed rows are skipped and
// logged, never fatal: one bad row must not take the rest of the year with
// it. Leading blank lines, short rows and reordered legacy headers are all
// tolerated.
func ParseSessions(content string, logger *slog.Logger) ([]models.SessionRecord, ParseReport, error) {
	report := ParseReport{Schema: SchemaNormalized}
	if strings.TrimSpace(content) == "" {
		return nil, report, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("read header: %w", err)
	}

	version, cols := DetectSchema(header)
	report.Schema = version
	if version != SchemaNormalized {
		report.NeedsRewrite = true
	}

	var records []models.SessionRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Skipped++
			report.NeedsRewrite = true
			logger.Warn("skipping unreadable row", "schema", version.String(), "err", err)
			continue
		}
		if blankRow(row) {
			continue
		}

		rec, assignedID, err := Decode(row, version, cols, logger)
		if err != nil {
			report.Skipped++
			report.NeedsRewrite = true
			logger.Warn("skipping malformed row", "schema", version.String(), "err", err)
			continue
		}
		if assignedID {
			report.NeedsRewrite = true
		}
		records = append(records, rec)
	}

	return records, report, nil
}

// EncodeSessions renders records as a complete normalized file, header
// included. Quoting is RFC-4180: fields containing the delimiter, quotes or
// newlines are wrapped and internal quotes doubled, so notes round-trip
// bit-exactly.
func EncodeSessions(records []models.SessionRecord) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(normalizedColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(Encode(rec)); err != nil {
			return "", fmt.Errorf("write row %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// EncodeRow renders a single record as one normalized row line.
func EncodeRow(rec models.SessionRecord) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(Encode(rec)); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
