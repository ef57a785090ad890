// Package workorders serves the per-job work detail screen: the merged table
// of confirmed and draft rows, guarded add/submit, and confirmed row edits.
package workorders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garagedesk/frontend/shared/rowtable"
	"garagedesk/infrastructure/backend"
	"garagedesk/models"
	"garagedesk/worksession"
)

const basePrefix = "/desk/workorders/"

func basePath(jobCardNo string) string {
	return basePrefix + url.PathEscape(jobCardNo)
}

func redirectBack(w http.ResponseWriter, r *http.Request, jobCardNo, status string) {
	target := basePath(jobCardNo)
	if status != "" {
		target += "?status=" + url.QueryEscape(status)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// resolveSession returns the job's session, creating it from the backend's
// card record on first visit. An unknown card still gets a session so drafts
// can be written while the backend is unreachable.
func resolveSession(ctx context.Context, mgr *worksession.Manager, api *backend.Client, jobCardNo string) *worksession.Session {
	if s, ok := mgr.Lookup(jobCardNo); ok {
		return s
	}
	card := models.JobCard{JobCardNo: jobCardNo}
	if cards, err := api.JobCards(ctx); err != nil {
		slog.Warn("job card lookup failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
	} else {
		for _, c := range cards {
			if c.JobCardNo == jobCardNo {
				card = c
				break
			}
		}
	}
	return mgr.Session(card)
}

// PageQueryHandler renders the merge view for one job card.
func PageQueryHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		if jobCardNo == "" {
			http.Redirect(w, r, "/desk/jobcards", http.StatusSeeOther)
			return
		}

		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		if err := s.RefreshRemote(r.Context()); err != nil {
			slog.Warn("work order refresh failed, rendering cached rows",
				slog.String("job_card_no", jobCardNo), slog.Any("err", err))
		}

		data := rowtable.PageData{
			Title:     "Work Orders " + jobCardNo,
			NavKey:    "jobcards",
			BasePath:  basePath(jobCardNo),
			Flash:     r.URL.Query().Get("status"),
			Card:      s.Card(),
			Kind:      models.KindWorkDetail,
			Rows:      s.Rows(r.Context()),
			Summary:   s.Summarize(r.Context()),
			EditingID: s.Editing(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := rowtable.Page(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render work order page", http.StatusInternalServerError)
			return
		}
	}
}

// AddRowCommandHandler appends a blank draft row after checking the previous
// draft is complete. The session does the authoritative id precheck.
func AddRowCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		s := resolveSession(r.Context(), mgr, api, jobCardNo)

		if msg, incomplete := rowtable.LastDraftIncomplete(models.KindWorkDetail, s.Drafts(r.Context())); incomplete {
			redirectBack(w, r, jobCardNo, msg)
			return
		}

		if _, err := s.AddRow(r.Context(), models.WorkItemRow{}); err != nil {
			if errors.Is(err, worksession.ErrAddInProgress) {
				redirectBack(w, r, jobCardNo, err.Error())
				return
			}
			slog.Error("add work detail row failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
			redirectBack(w, r, jobCardNo, "Failed to add row")
			return
		}
		redirectBack(w, r, jobCardNo, "")
	}
}

// SaveDraftCommandHandler writes edited fields back onto one draft row.
func SaveDraftCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, jobCardNo, "Invalid row id")
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectBack(w, r, jobCardNo, "Invalid form")
			return
		}

		edited, ve := rowtable.ParseRowForm(r, models.KindWorkDetail)
		if ve.HasErrors() {
			redirectBack(w, r, jobCardNo, ve.Error())
			return
		}

		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		s.UpdateDraft(r.Context(), id, func(row models.WorkItemRow) models.WorkItemRow {
			edited.ID = row.ID
			edited.JobCardNo = row.JobCardNo
			return edited
		})
		redirectBack(w, r, jobCardNo, "")
	}
}

// RemoveDraftCommandHandler discards one draft row. Local only.
func RemoveDraftCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, jobCardNo, "Invalid row id")
			return
		}
		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		s.RemoveDraft(r.Context(), id)
		redirectBack(w, r, jobCardNo, "")
	}
}

// SubmitCommandHandler posts the draft sequence to the backend.
func SubmitCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		s := resolveSession(r.Context(), mgr, api, jobCardNo)

		if err := s.Submit(r.Context()); err != nil {
			switch {
			case errors.Is(err, worksession.ErrNoDrafts), errors.Is(err, worksession.ErrSubmitInFlight):
				redirectBack(w, r, jobCardNo, err.Error())
			default:
				slog.Error("work order submit failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
				redirectBack(w, r, jobCardNo, "Submit failed; drafts kept")
			}
			return
		}
		redirectBack(w, r, jobCardNo, "Submitted")
	}
}

// EditConfirmedCommandHandler puts one confirmed row into edit mode.
func EditConfirmedCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, jobCardNo, "Invalid row id")
			return
		}
		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		s.SetEditing(id)
		redirectBack(w, r, jobCardNo, "")
	}
}

// UpdateConfirmedCommandHandler edits one confirmed row via the backend,
// confirm-then-apply.
func UpdateConfirmedCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, jobCardNo, "Invalid row id")
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectBack(w, r, jobCardNo, "Invalid form")
			return
		}

		edited, ve := rowtable.ParseRowForm(r, models.KindWorkDetail)
		if ve.HasErrors() {
			redirectBack(w, r, jobCardNo, ve.Error())
			return
		}
		edited.ID = id
		edited.JobCardNo = jobCardNo

		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		if err := s.UpdateConfirmed(r.Context(), edited); err != nil {
			slog.Error("update work detail failed", slog.Int64("id", id), slog.Any("err", err))
			redirectBack(w, r, jobCardNo, "Update failed; row unchanged")
			return
		}
		redirectBack(w, r, jobCardNo, "")
	}
}

// DeleteConfirmedCommandHandler deletes one confirmed row via the backend,
// confirm-then-apply.
func DeleteConfirmedCommandHandler(mgr *worksession.Manager, api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, jobCardNo, "Invalid row id")
			return
		}
		s := resolveSession(r.Context(), mgr, api, jobCardNo)
		if err := s.DeleteConfirmed(r.Context(), id); err != nil {
			slog.Error("delete work detail failed", slog.Int64("id", id), slog.Any("err", err))
			redirectBack(w, r, jobCardNo, "Delete failed; row kept")
			return
		}
		redirectBack(w, r, jobCardNo, "Row deleted")
	}
}
