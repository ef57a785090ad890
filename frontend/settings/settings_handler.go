// Package settings persists desk preferences: poll intervals and the tab
// push toggle. Changes take effect on the next restart; the page says so.
package settings

import (
	"net/http"
	"net/url"
	"strconv"

	"garagedesk/infrastructure/sqlite"
)

func PageQueryHandler(db *sqlite.DB, defaults DeskSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := Load(r.Context(), db, defaults)
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := SettingsPage(current, r.URL.Query().Get("status")).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render settings page", http.StatusInternalServerError)
			return
		}
	}
}

func UpdateCommandHandler(db *sqlite.DB, defaults DeskSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}

		next := defaults
		if v, err := strconv.Atoi(r.FormValue("workorder_poll_seconds")); err == nil && v >= 1 && v <= 300 {
			next.WorkOrderPollSeconds = v
		} else {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("work order poll must be 1-300 seconds"), http.StatusSeeOther)
			return
		}
		if v, err := strconv.Atoi(r.FormValue("spare_poll_seconds")); err == nil && v >= 1 && v <= 300 {
			next.SparePollSeconds = v
		} else {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("spare poll must be 1-300 seconds"), http.StatusSeeOther)
			return
		}
		next.PushEnabled = r.FormValue("push_enabled") != ""

		if err := Save(r.Context(), db, next); err != nil {
			http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("save failed"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/desk/settings?status="+url.QueryEscape("saved; restart to apply poll intervals"), http.StatusSeeOther)
	}
}
