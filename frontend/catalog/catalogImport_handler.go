// Package catalog maintains the desk-local spare parts master that feeds the
// part dropdown on the spare screens. Parts arrive by CSV import.
package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/sqlite"
)

func ImportPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message := r.URL.Query().Get("status")
		if message == "" {
			message = "Upload CSV with header: part_number,name,unit_price"
		}
		parts, err := ListParts(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to load parts catalog", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ImportPage(PageData{Message: message, Parts: parts}).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render catalog page", http.StatusInternalServerError)
			return
		}
	}
}

func ImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: invalid upload"), http.StatusSeeOther)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: file is required"), http.StatusSeeOther)
			return
		}
		defer file.Close()

		summary, err := ImportCSV(r.Context(), db, auditSvc, file)
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Error: "+err.Error()), http.StatusSeeOther)
			return
		}

		status := fmt.Sprintf("Imported: %d inserted, %d updated, %d errors", summary.Inserted, summary.Updated, summary.Errors)
		http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape(status), http.StatusSeeOther)
	}
}

func DeletePartCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Invalid part id"), http.StatusSeeOther)
			return
		}

		deleted, err := DeletePart(r.Context(), db, auditSvc, id)
		if err != nil {
			http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape("Failed to delete part"), http.StatusSeeOther)
			return
		}

		status := "No part deleted"
		if deleted {
			status = "Deleted 1 part"
		}
		http.Redirect(w, r, "/desk/catalog?status="+url.QueryEscape(status), http.StatusSeeOther)
	}
}
