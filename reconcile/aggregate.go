package reconcile

import (
	"math"
	"strings"

	"garagedesk/models"
)

// UnknownStatus is the histogram bucket for rows with a missing status.
const UnknownStatus = "unknown"

// StatusHistogram counts row statuses, lowercased for grouping. Rows without
// a status land in the "unknown" bucket.
func StatusHistogram(rows []MergedRow) map[string]int {
	hist := make(map[string]int)
	for _, m := range rows {
		status := strings.ToLower(strings.TrimSpace(m.Row.Status))
		if status == "" {
			status = UnknownStatus
		}
		hist[status]++
	}
	return hist
}

// AverageProgress is the mean progress over rows that carry one, rounded to
// the nearest integer. Rows without progress are left out of the mean, and an
// empty input yields 0 rather than a division by zero.
func AverageProgress(rows []MergedRow) int {
	var sum, n int
	for _, m := range rows {
		if !m.Row.HasProgress() {
			continue
		}
		sum += *m.Row.Progress
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// DeriveParentStatus decides the parent job status from a status histogram
// over total rows. Precedence: all completed wins, then pending outnumbering
// started, then any started, then not started.
func DeriveParentStatus(hist map[string]int, total int) string {
	completed := hist[models.StatusCompleted]
	pending := hist[models.StatusPending]
	started := hist[models.StatusStarted]

	switch {
	case total > 0 && completed == total:
		return models.StatusCompleted
	case pending > started:
		return models.StatusPending
	case started > 0:
		return models.StatusStarted
	default:
		return models.StatusNotStarted
	}
}
