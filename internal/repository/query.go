package repository

import (
	"context"
	"time"

	"github.com/jujutime/juju/internal/models"
)

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Query combines filters ANDed together, plus optional pagination. Zero
// values mean "no constraint".
type Query struct {
	Interval        *Interval
	ProjectIDs      []string
	ActivityTypeIDs []string
	Limit           int
	Offset          int
}

// Load returns the sessions matching every supplied criterion, sorted by
// start date descending. Interval matching uses overlap semantics:
// record.start < interval.end AND record.end > interval.start.
func (r *Repository) Load(ctx context.Context, q Query) ([]models.SessionRecord, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []models.SessionRecord
	for _, rec := range all {
		if !q.matches(rec) {
			continue
		}
		matched = append(matched, rec)
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (q Query) matches(rec models.SessionRecord) bool {
	if q.Interval != nil && !rec.Overlaps(q.Interval.Start, q.Interval.End) {
		return false
	}
	if len(q.ProjectIDs) > 0 && !containsRef(q.ProjectIDs, rec.ProjectID) {
		return false
	}
	if len(q.ActivityTypeIDs) > 0 && !containsRef(q.ActivityTypeIDs, rec.ActivityTypeID) {
		return false
	}
	return true
}

func containsRef(ids []string, ref *string) bool {
	if ref == nil {
		return false
	}
	for _, id := range ids {
		if id == *ref {
			return true
		}
	}
	return false
}
