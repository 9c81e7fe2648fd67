package parser

import (
	"fmt"
	"strings"
)

// SchemaVersion identifies one historical column layout of a session file.
// It is detected per file from the header row; every row in a file is decoded
// under the same version.
type SchemaVersion int

const (
	// SchemaLegacyNoID is the original minimal layout:
	// date,start_time,end_time,duration_minutes,project,notes,mood. Rows
	// carry no identity and need synthetic IDs on load.
	SchemaLegacyNoID SchemaVersion = iota
	// SchemaLegacyWithID is the minimal layout with a leading id column.
	SchemaLegacyWithID
	// SchemaIntermediate uses start_date/end_date timestamps plus some of
	// the extension reference columns, but not the full normalized set.
	SchemaIntermediate
	// SchemaNormalized is the canonical write format.
	SchemaNormalized
)

// String returns a short name for logs.
func (v SchemaVersion) String() string {
	switch v {
	case SchemaLegacyNoID:
		return "legacy-no-id"
	case SchemaLegacyWithID:
		return "legacy-with-id"
	case SchemaIntermediate:
		return "intermediate"
	case SchemaNormalized:
		return "normalized"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// IsLegacy reports whether rows use the date + start_time/end_time layout.
func (v SchemaVersion) IsLegacy() bool {
	return v == SchemaLegacyNoID || v == SchemaLegacyWithID
}

// ColumnIndex maps canonical column names to their position in the header.
// Legacy headers may order columns differently than the default, so decoding
// always goes through this map instead of fixed positions.
type ColumnIndex map[string]int

// Has reports whether the header contained the named column.
func (c ColumnIndex) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// normalizedColumns is the canonical write layout, in order.
var normalizedColumns = []string{
	"id",
	"start_date",
	"end_date",
	"project",
	"project_id",
	"activity_type_id",
	"project_phase_id",
	"milestone_text",
	"notes",
	"mood",
}

// DetectSchema classifies a header row and returns the column index map.
// Column names are matched case-insensitively with surrounding whitespace
// trimmed, since historical files were written by several app versions.
func DetectSchema(header []string) (SchemaVersion, ColumnIndex) {
	cols := make(ColumnIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	hasID := cols.Has("id") && cols["id"] == 0

	if cols.Has("start_date") {
		if hasID && hasAllNormalizedColumns(cols) {
			return SchemaNormalized, cols
		}
		return SchemaIntermediate, cols
	}

	if hasID {
		return SchemaLegacyWithID, cols
	}
	return SchemaLegacyNoID, cols
}

func hasAllNormalizedColumns(cols ColumnIndex) bool {
	for _, name := range normalizedColumns {
		if !cols.Has(name) {
			return false
		}
	}
	return true
}
