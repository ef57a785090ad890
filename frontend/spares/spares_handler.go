// Package spares serves the spare request and spare change screens. Both run
// the same session logic as work orders with the spare status set and the
// parts catalog feeding the part dropdown.
package spares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garagedesk/frontend/catalog"
	"garagedesk/frontend/shared/rowtable"
	"garagedesk/infrastructure/backend"
	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
	"garagedesk/worksession"
)

// Screens bundles the two spare-side managers keyed by URL segment.
type Screens struct {
	Requests *worksession.Manager
	Changes  *worksession.Manager
	API      *backend.Client
	DB       *sqlite.DB
}

func (sc *Screens) manager(segment string) (*worksession.Manager, models.RowKind, bool) {
	switch segment {
	case "requests":
		return sc.Requests, models.KindSpareRequest, true
	case "changes":
		return sc.Changes, models.KindSpareChange, true
	default:
		return nil, "", false
	}
}

func basePath(segment, jobCardNo string) string {
	return "/desk/spares/" + segment + "/" + url.PathEscape(jobCardNo)
}

func redirectBack(w http.ResponseWriter, r *http.Request, segment, jobCardNo, status string) {
	target := basePath(segment, jobCardNo)
	if status != "" {
		target += "?status=" + url.QueryEscape(status)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (sc *Screens) session(ctx context.Context, mgr *worksession.Manager, jobCardNo string) *worksession.Session {
	if s, ok := mgr.Lookup(jobCardNo); ok {
		return s
	}
	card := models.JobCard{JobCardNo: jobCardNo}
	if cards, err := sc.API.JobCards(ctx); err != nil {
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

// PageQueryHandler renders the merge view for one job's spare rows.
func (sc *Screens) PageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, kind, ok := sc.manager(segment)
		if !ok || jobCardNo == "" {
			http.Redirect(w, r, "/desk/jobcards", http.StatusSeeOther)
			return
		}

		s := sc.session(r.Context(), mgr, jobCardNo)
		if err := s.RefreshRemote(r.Context()); err != nil {
			slog.Warn("spare rows refresh failed, rendering cached rows",
				slog.String("job_card_no", jobCardNo), slog.Any("err", err))
		}

		parts, err := catalog.ListParts(r.Context(), sc.DB)
		if err != nil {
			slog.Warn("parts catalog load failed", slog.Any("err", err))
		}

		title := "Spare Requests " + jobCardNo
		if kind == models.KindSpareChange {
			title = "Spare Changes " + jobCardNo
		}
		data := rowtable.PageData{
			Title:     title,
			NavKey:    "jobcards",
			BasePath:  basePath(segment, jobCardNo),
			Flash:     r.URL.Query().Get("status"),
			Card:      s.Card(),
			Kind:      kind,
			Rows:      s.Rows(r.Context()),
			Summary:   s.Summarize(r.Context()),
			EditingID: s.Editing(),
			Parts:     parts,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := rowtable.Page(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render spares page", http.StatusInternalServerError)
			return
		}
	}
}

// AddRowCommandHandler appends a blank draft spare row.
func (sc *Screens) AddRowCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, kind, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		s := sc.session(r.Context(), mgr, jobCardNo)

		if msg, incomplete := rowtable.LastDraftIncomplete(kind, s.Drafts(r.Context())); incomplete {
			redirectBack(w, r, segment, jobCardNo, msg)
			return
		}

		if _, err := s.AddRow(r.Context(), models.WorkItemRow{Status: models.StatusPending}); err != nil {
			if errors.Is(err, worksession.ErrAddInProgress) {
				redirectBack(w, r, segment, jobCardNo, err.Error())
				return
			}
			slog.Error("add spare row failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
			redirectBack(w, r, segment, jobCardNo, "Failed to add row")
			return
		}
		redirectBack(w, r, segment, jobCardNo, "")
	}
}

// SaveDraftCommandHandler writes edited fields back onto one draft spare row.
func (sc *Screens) SaveDraftCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, kind, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, segment, jobCardNo, "Invalid row id")
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectBack(w, r, segment, jobCardNo, "Invalid form")
			return
		}

		edited, ve := rowtable.ParseRowForm(r, kind)
		if ve.HasErrors() {
			redirectBack(w, r, segment, jobCardNo, ve.Error())
			return
		}

		s := sc.session(r.Context(), mgr, jobCardNo)
		s.UpdateDraft(r.Context(), id, func(row models.WorkItemRow) models.WorkItemRow {
			edited.ID = row.ID
			edited.JobCardNo = row.JobCardNo
			return edited
		})
		redirectBack(w, r, segment, jobCardNo, "")
	}
}

// RemoveDraftCommandHandler discards one draft spare row.
func (sc *Screens) RemoveDraftCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, _, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, segment, jobCardNo, "Invalid row id")
			return
		}
		s := sc.session(r.Context(), mgr, jobCardNo)
		s.RemoveDraft(r.Context(), id)
		redirectBack(w, r, segment, jobCardNo, "")
	}
}

// SubmitCommandHandler posts the draft spare rows to the backend.
func (sc *Screens) SubmitCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, _, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		s := sc.session(r.Context(), mgr, jobCardNo)

		if err := s.Submit(r.Context()); err != nil {
			switch {
			case errors.Is(err, worksession.ErrNoDrafts), errors.Is(err, worksession.ErrSubmitInFlight):
				redirectBack(w, r, segment, jobCardNo, err.Error())
			default:
				slog.Error("spare submit failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
				redirectBack(w, r, segment, jobCardNo, "Submit failed; drafts kept")
			}
			return
		}
		redirectBack(w, r, segment, jobCardNo, "Submitted")
	}
}

// EditConfirmedCommandHandler puts one confirmed spare row into edit mode.
func (sc *Screens) EditConfirmedCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, _, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, segment, jobCardNo, "Invalid row id")
			return
		}
		s := sc.session(r.Context(), mgr, jobCardNo)
		s.SetEditing(id)
		redirectBack(w, r, segment, jobCardNo, "")
	}
}

// UpdateConfirmedCommandHandler edits one confirmed spare row via the
// backend, confirm-then-apply.
func (sc *Screens) UpdateConfirmedCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, kind, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, segment, jobCardNo, "Invalid row id")
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectBack(w, r, segment, jobCardNo, "Invalid form")
			return
		}

		edited, ve := rowtable.ParseRowForm(r, kind)
		if ve.HasErrors() {
			redirectBack(w, r, segment, jobCardNo, ve.Error())
			return
		}
		edited.ID = id
		edited.JobCardNo = jobCardNo

		s := sc.session(r.Context(), mgr, jobCardNo)
		if err := s.UpdateConfirmed(r.Context(), edited); err != nil {
			slog.Error("update spare row failed", slog.Int64("id", id), slog.Any("err", err))
			redirectBack(w, r, segment, jobCardNo, "Update failed; row unchanged")
			return
		}
		redirectBack(w, r, segment, jobCardNo, "")
	}
}

// DeleteConfirmedCommandHandler deletes one confirmed spare row via the
// backend, confirm-then-apply.
func (sc *Screens) DeleteConfirmedCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, _, ok := sc.manager(segment)
		if !ok {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectBack(w, r, segment, jobCardNo, "Invalid row id")
			return
		}
		s := sc.session(r.Context(), mgr, jobCardNo)
		if err := s.DeleteConfirmed(r.Context(), id); err != nil {
			slog.Error("delete spare row failed", slog.Int64("id", id), slog.Any("err", err))
			redirectBack(w, r, segment, jobCardNo, "Delete failed; row kept")
			return
		}
		redirectBack(w, r, segment, jobCardNo, "Row deleted")
	}
}
