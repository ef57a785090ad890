// Package jobcards serves the landing list of job cards with their derived
// status and links into the per-job row screens.
package jobcards

import (
	"log/slog"
	"net/http"

	"garagedesk/infrastructure/backend"
	"garagedesk/models"
	"garagedesk/worksession"
)

// CardRow is one list entry. Status and progress come from the open session
// when the desk has one, so local drafts count; otherwise from the backend's
// own card record.
type CardRow struct {
	Card            models.JobCard
	Status          string
	AverageProgress int
	DraftCount      int
}

func ListPageQueryHandler(api *backend.Client, workOrders *worksession.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := r.URL.Query().Get("status")

		cards, err := api.JobCards(r.Context())
		if err != nil {
			slog.Error("job card list failed", slog.Any("err", err))
			flash = "Backend unreachable; showing jobs with local activity only"
			cards = nil
		}

		seen := make(map[string]bool, len(cards))
		rows := make([]CardRow, 0, len(cards))
		for _, card := range cards {
			seen[card.JobCardNo] = true
			row := CardRow{Card: card, Status: card.Status, AverageProgress: card.AverageProgress}
			if s, ok := workOrders.Lookup(card.JobCardNo); ok {
				sum := s.Summarize(r.Context())
				row.Status = sum.ParentStatus
				row.AverageProgress = sum.AverageProgress
				row.DraftCount = len(s.Drafts(r.Context()))
			} else if card.ID > 0 {
				// No local session to average over; ask the backend for its
				// server-side figure. The list payload value stands in when
				// the call fails.
				if avg, err := api.AverageProgress(r.Context(), card.ID); err == nil {
					row.AverageProgress = avg
				}
			}
			rows = append(rows, row)
		}

		// Jobs with drafts but no backend record still show up, so offline
		// work stays reachable.
		for _, s := range workOrders.Sessions() {
			if seen[s.JobKey()] {
				continue
			}
			sum := s.Summarize(r.Context())
			rows = append(rows, CardRow{
				Card:            s.Card(),
				Status:          sum.ParentStatus,
				AverageProgress: sum.AverageProgress,
				DraftCount:      len(s.Drafts(r.Context())),
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ListPage(rows, flash).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render job cards page", http.StatusInternalServerError)
			return
		}
	}
}
