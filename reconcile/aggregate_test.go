package reconcile

import (
	"testing"

	"garagedesk/models"
)

func progressRow(id int64, status string, progress int) MergedRow {
	p := progress
	return MergedRow{Row: models.WorkItemRow{ID: id, Status: status, Progress: &p}, Origin: OriginRemote}
}

func statusRow(id int64, status string) MergedRow {
	return MergedRow{Row: models.WorkItemRow{ID: id, Status: status}, Origin: OriginRemote}
}

func TestStatusHistogramNormalizesCase(t *testing.T) {
	rows := []MergedRow{
		statusRow(1, "Completed"),
		statusRow(2, "completed"),
		statusRow(3, " PENDING "),
		statusRow(4, ""),
	}
	hist := StatusHistogram(rows)
	if hist["completed"] != 2 {
		t.Fatalf("completed count = %d, want 2", hist["completed"])
	}
	if hist["pending"] != 1 {
		t.Fatalf("pending count = %d, want 1", hist["pending"])
	}
	if hist[UnknownStatus] != 1 {
		t.Fatalf("unknown count = %d, want 1", hist[UnknownStatus])
	}
}

func TestAverageProgressEmpty(t *testing.T) {
	if got := AverageProgress(nil); got != 0 {
		t.Fatalf("AverageProgress(nil) = %d, want 0", got)
	}
	// Rows exist but none carry progress.
	rows := []MergedRow{statusRow(1, "pending"), statusRow(2, "started")}
	if got := AverageProgress(rows); got != 0 {
		t.Fatalf("AverageProgress without progress rows = %d, want 0", got)
	}
}

func TestAverageProgressRoundsAndBounds(t *testing.T) {
	cases := []struct {
		name string
		rows []MergedRow
		want int
	}{
		{"single row", []MergedRow{progressRow(1, "started", 40)}, 40},
		{"rounds up", []MergedRow{progressRow(1, "", 1), progressRow(2, "", 2)}, 2},
		{"rounds down", []MergedRow{progressRow(1, "", 1), progressRow(2, "", 1), progressRow(3, "", 2)}, 1},
		{"skips rows without progress", []MergedRow{progressRow(1, "", 100), statusRow(2, "pending")}, 100},
		{"all complete", []MergedRow{progressRow(1, "", 100), progressRow(2, "", 100)}, 100},
		{"all zero", []MergedRow{progressRow(1, "", 0), progressRow(2, "", 0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AverageProgress(tc.rows)
			if got != tc.want {
				t.Fatalf("AverageProgress = %d, want %d", got, tc.want)
			}
			if got < 0 || got > 100 {
				t.Fatalf("AverageProgress %d outside [0,100]", got)
			}
		})
	}
}

func TestDeriveParentStatusPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		hist  map[string]int
		total int
		want  string
	}{
		{"all completed", map[string]int{"completed": 3}, 3, models.StatusCompleted},
		{"completed beats other counts only when total", map[string]int{"completed": 2, "pending": 1}, 3, models.StatusPending},
		{"pending outnumbers started", map[string]int{"pending": 2, "started": 1}, 3, models.StatusPending},
		{"started when tied with pending", map[string]int{"pending": 1, "started": 1, "completed": 1}, 3, models.StatusStarted},
		{"any started", map[string]int{"started": 1, "not started": 2}, 3, models.StatusStarted},
		{"nothing underway", map[string]int{"not started": 2}, 2, models.StatusNotStarted},
		{"no rows", map[string]int{}, 0, models.StatusNotStarted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveParentStatus(tc.hist, tc.total); got != tc.want {
				t.Fatalf("DeriveParentStatus = %q, want %q", got, tc.want)
			}
		})
	}
}

// The worked example: two confirmed rows (completed/100, pending/0) plus a
// submitted third row (started/40) average to 47 and derive "started".
func TestAggregateWorkedExample(t *testing.T) {
	rows := []MergedRow{
		progressRow(1, "completed", 100),
		progressRow(2, "pending", 0),
		progressRow(3, "started", 40),
	}
	if got := AverageProgress(rows); got != 47 {
		t.Fatalf("AverageProgress = %d, want 47", got)
	}
	hist := StatusHistogram(rows)
	if got := DeriveParentStatus(hist, len(rows)); got != models.StatusStarted {
		t.Fatalf("DeriveParentStatus = %q, want %q", got, models.StatusStarted)
	}
}
