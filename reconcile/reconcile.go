// Package reconcile holds the pure merge and id-assignment logic shared by
// the work order, spare request and spare change tables: confirmed rows and
// local drafts are kept in separate sources and combined into one display
// sequence here.
package reconcile

import "garagedesk/models"

// Origin tells whether a merged row came from the backend or is a local
// draft. It is derived at merge time, never stored.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// MergedRow is one display row of the merge view.
type MergedRow struct {
	Row    models.WorkItemRow
	Origin Origin
}

// NextID returns a collision-free id for a new draft row: one more than the
// highest assigned id across both sources, or 1 when neither source has an
// assigned id. Zero and negative ids count as unassigned and are skipped, so
// an empty id set can never produce an underflowed maximum.
func NextID(remote, local []models.WorkItemRow) int64 {
	var max int64
	for _, r := range remote {
		if r.ID > max {
			max = r.ID
		}
	}
	for _, r := range local {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// Merge concatenates confirmed rows and draft rows into the display order:
// all remote rows first in fetch order, then all drafts in insertion order.
// Neither sub-sequence is re-sorted.
//
// A draft whose id already appears among the remote rows is the same row
// come back confirmed (the post-submit state, where the draft store holds
// the server-returned rows); it is shadowed by the confirmed copy so ids
// stay unique within one merge view.
func Merge(remote, local []models.WorkItemRow) []MergedRow {
	remoteIDs := make(map[int64]struct{}, len(remote))
	merged := make([]MergedRow, 0, len(remote)+len(local))
	for _, r := range remote {
		remoteIDs[r.ID] = struct{}{}
		merged = append(merged, MergedRow{Row: r, Origin: OriginRemote})
	}
	for _, r := range local {
		if _, confirmed := remoteIDs[r.ID]; confirmed {
			continue
		}
		merged = append(merged, MergedRow{Row: r, Origin: OriginLocal})
	}
	return merged
}

// Editable reports whether a merged row renders as editable: drafts always
// are, and a confirmed row is when it is the single row currently in edit
// mode. editingID <= 0 means no row is in edit mode.
func (m MergedRow) Editable(editingID int64) bool {
	if m.Origin == OriginLocal {
		return true
	}
	return editingID > 0 && m.Row.ID == editingID
}
