package reconcile

import (
	"testing"

	"garagedesk/models"
)

func rowsWithIDs(ids ...int64) []models.WorkItemRow {
	rows := make([]models.WorkItemRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.WorkItemRow{ID: id})
	}
	return rows
}

func TestNextIDEmptySources(t *testing.T) {
	if got := NextID(nil, nil); got != 1 {
		t.Fatalf("expected 1 for empty sources, got %d", got)
	}
	if got := NextID([]models.WorkItemRow{}, []models.WorkItemRow{}); got != 1 {
		t.Fatalf("expected 1 for empty slices, got %d", got)
	}
}

func TestNextIDSkipsUnassignedIDs(t *testing.T) {
	// Zero and negative ids mean "never assigned" and must not anchor the max.
	remote := rowsWithIDs(0, -3)
	local := rowsWithIDs(0)
	if got := NextID(remote, local); got != 1 {
		t.Fatalf("expected 1 when only unassigned ids present, got %d", got)
	}
}

func TestNextIDStrictlyGreater(t *testing.T) {
	cases := []struct {
		name   string
		remote []models.WorkItemRow
		local  []models.WorkItemRow
		want   int64
	}{
		{"remote only", rowsWithIDs(1, 2, 5), nil, 6},
		{"local only", nil, rowsWithIDs(7), 8},
		{"overlapping ids", rowsWithIDs(1, 2, 3), rowsWithIDs(3, 4), 5},
		{"local ahead of remote", rowsWithIDs(2), rowsWithIDs(9, 6), 10},
		{"unassigned mixed in", rowsWithIDs(0, 4), rowsWithIDs(-1, 2), 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextID(tc.remote, tc.local)
			if got != tc.want {
				t.Fatalf("NextID = %d, want %d", got, tc.want)
			}
			for _, r := range append(append([]models.WorkItemRow{}, tc.remote...), tc.local...) {
				if r.ID > 0 && got <= r.ID {
					t.Fatalf("NextID %d not greater than existing id %d", got, r.ID)
				}
			}
		})
	}
}

func TestMergeOrderingRemoteBeforeLocal(t *testing.T) {
	remote := rowsWithIDs(3, 1, 2) // fetch order, deliberately unsorted
	local := rowsWithIDs(10, 9)

	merged := Merge(remote, local)
	if len(merged) != 5 {
		t.Fatalf("expected 5 merged rows, got %d", len(merged))
	}

	wantIDs := []int64{3, 1, 2, 10, 9}
	wantOrigins := []Origin{OriginRemote, OriginRemote, OriginRemote, OriginLocal, OriginLocal}
	for i, m := range merged {
		if m.Row.ID != wantIDs[i] {
			t.Fatalf("row %d: id %d, want %d", i, m.Row.ID, wantIDs[i])
		}
		if m.Origin != wantOrigins[i] {
			t.Fatalf("row %d: origin %s, want %s", i, m.Origin, wantOrigins[i])
		}
	}
}

func TestMergeShadowsConfirmedDrafts(t *testing.T) {
	// Post-submit state: the draft store holds the server-returned rows, which
	// are also in the remote cache. The confirmed copy wins and ids stay
	// unique.
	remote := rowsWithIDs(1, 2, 3)
	local := rowsWithIDs(3)

	merged := Merge(remote, local)
	if len(merged) != 3 {
		t.Fatalf("expected shadowed merge of 3 rows, got %d", len(merged))
	}
	seen := make(map[int64]bool)
	for _, m := range merged {
		if seen[m.Row.ID] {
			t.Fatalf("duplicate id %d in merge view", m.Row.ID)
		}
		seen[m.Row.ID] = true
	}
}

func TestMergeEmptySources(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d rows", len(got))
	}
	if got := Merge(nil, rowsWithIDs(1)); len(got) != 1 || got[0].Origin != OriginLocal {
		t.Fatalf("expected single local row, got %+v", got)
	}
}

func TestEditable(t *testing.T) {
	draft := MergedRow{Row: models.WorkItemRow{ID: 4}, Origin: OriginLocal}
	confirmed := MergedRow{Row: models.WorkItemRow{ID: 2}, Origin: OriginRemote}

	if !draft.Editable(0) {
		t.Fatal("draft rows must always be editable")
	}
	if confirmed.Editable(0) {
		t.Fatal("confirmed row editable with no edit selection")
	}
	if !confirmed.Editable(2) {
		t.Fatal("confirmed row should be editable when selected")
	}
	if confirmed.Editable(3) {
		t.Fatal("confirmed row editable under another row's selection")
	}
}
