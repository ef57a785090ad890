// Package rowtable renders the merged row table shared by the work order and
// spare screens: confirmed rows first, draft rows after, a single confirmed
// row editable at a time, and the aggregate footer.
package rowtable

import (
	"net/http"
	"strconv"
	"strings"

	"garagedesk/frontend/shared/forms"
	"garagedesk/models"
	"garagedesk/reconcile"
	"garagedesk/worksession"
)

// PageData is everything one screen render needs.
type PageData struct {
	Title    string
	NavKey   string
	BasePath string
	Flash    string

	Card      models.JobCard
	Kind      models.RowKind
	Rows      []reconcile.MergedRow
	Summary   worksession.Summary
	EditingID int64

	// Parts fills the part dropdown on spare screens; empty on work orders.
	Parts []models.SparePart
}

// ParseRowForm reads the row fields for the given kind out of a submitted
// form. Field errors come back in ve; the row is still populated with what
// parsed so the caller can re-render the form.
func ParseRowForm(r *http.Request, kind models.RowKind) (models.WorkItemRow, *forms.ValidationErrors) {
	ve := &forms.ValidationErrors{}
	row := models.WorkItemRow{
		Status: strings.TrimSpace(r.FormValue("status")),
		Remark: strings.TrimSpace(r.FormValue("remark")),
	}
	forms.ValidateEnum(ve, "status", row.Status, models.StatusesFor(kind))

	if kind == models.KindWorkDetail {
		row.Description = strings.TrimSpace(r.FormValue("description"))
		row.Assignee = strings.TrimSpace(r.FormValue("assignee"))
		row.TimeIn = strings.TrimSpace(r.FormValue("time_in"))
		row.TimeOut = strings.TrimSpace(r.FormValue("time_out"))
		row.Progress = forms.ParseProgress(ve, "progress", r.FormValue("progress"))
		return row, ve
	}

	row.PartNumber = strings.TrimSpace(r.FormValue("part_number"))
	row.Quantity = forms.ParseQuantity(ve, "quantity", r.FormValue("quantity"))
	if raw := strings.TrimSpace(r.FormValue("unit_price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			ve.Add("unit_price", "must be a non-negative number")
		} else {
			row.UnitPrice = price
		}
	}
	return row, ve
}

// LastDraftIncomplete reports whether the newest draft row still misses
// required fields; the add button stays disabled until it is filled in.
func LastDraftIncomplete(kind models.RowKind, drafts []models.WorkItemRow) (string, bool) {
	if len(drafts) == 0 {
		return "", false
	}
	ve := &forms.ValidationErrors{}
	forms.ValidateRowComplete(ve, kind, drafts[len(drafts)-1])
	if !ve.HasErrors() {
		return "", false
	}
	return "Complete the previous row first (" + ve.Error() + ")", true
}
