package rowtable

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
	"garagedesk/models"
	"garagedesk/reconcile"
)

// Page renders the full screen: card header, merged table, add-row form,
// submit button and the aggregate footer.
func Page(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		writeCardHeader(w, data)
		writeTable(w, data)
		writeAddRowForm(w, data)
		writeSummary(w, data)
		_, err := io.WriteString(w, sharedhtml.LiveReloadScript(data.Card.JobCardNo, string(data.Kind)))
		return err
	})
	return sharedhtml.Layout(data.Title, data.NavKey, data.Flash, body)
}

func esc(s string) string { return templ.EscapeString(s) }

func writeCardHeader(w io.Writer, data PageData) {
	fmt.Fprintf(w, `<div class="card bg-base-100 shadow-sm mb-4"><div class="card-body py-3 flex-row flex-wrap gap-6">`)
	fmt.Fprintf(w, `<div><span class="text-xs opacity-60">Job Card</span><div class="font-bold">%s</div></div>`, esc(data.Card.JobCardNo))
	fmt.Fprintf(w, `<div><span class="text-xs opacity-60">Plate</span><div>%s</div></div>`, esc(data.Card.PlateNumber))
	fmt.Fprintf(w, `<div><span class="text-xs opacity-60">Customer</span><div>%s</div></div>`, esc(data.Card.CustomerName))
	if data.Card.RepairCategory != "" {
		fmt.Fprintf(w, `<div><span class="text-xs opacity-60">Category</span><div>%s</div></div>`, esc(data.Card.RepairCategory))
	}
	io.WriteString(w, `</div></div>`)
}

func writeTable(w io.Writer, data PageData) {
	io.WriteString(w, `<div class="overflow-x-auto"><table class="table table-zebra bg-base-100">`)
	if data.Kind == models.KindWorkDetail {
		io.WriteString(w, `<thead><tr><th>#</th><th>Description</th><th>Assignee</th><th>Time In</th><th>Time Out</th><th>Status</th><th>Progress</th><th>Remark</th><th></th><th></th></tr></thead>`)
	} else {
		io.WriteString(w, `<thead><tr><th>#</th><th>Part No</th><th>Qty</th><th>Unit Price</th><th>Status</th><th>Remark</th><th></th><th></th></tr></thead>`)
	}
	io.WriteString(w, `<tbody>`)
	for _, mr := range data.Rows {
		switch {
		case mr.Origin == reconcile.OriginLocal:
			writeDraftRow(w, data, mr.Row)
		case mr.Row.ID == data.EditingID:
			writeConfirmedEditRow(w, data, mr.Row)
		default:
			writeConfirmedRow(w, data, mr.Row)
		}
	}
	io.WriteString(w, `</tbody></table></div>`)
}

func writeConfirmedRow(w io.Writer, data PageData, row models.WorkItemRow) {
	fmt.Fprintf(w, `<tr><td>%d</td>`, row.ID)
	if data.Kind == models.KindWorkDetail {
		fmt.Fprintf(w, `<td>%s</td><td>%s</td><td>%s</td><td>%s</td><td><span class="badge">%s</span></td><td>%s</td><td>%s</td>`,
			esc(row.Description), esc(row.Assignee), esc(row.TimeIn), esc(row.TimeOut),
			esc(row.Status), progressText(row), esc(row.Remark))
	} else {
		fmt.Fprintf(w, `<td>%s</td><td>%d</td><td>%.2f</td><td><span class="badge">%s</span></td><td>%s</td>`,
			esc(row.PartNumber), row.Quantity, row.UnitPrice, esc(row.Status), esc(row.Remark))
	}
	fmt.Fprintf(w, `<td><form method="POST" action="%s/confirmed/%d/edit"><button class="btn btn-ghost btn-xs">Edit</button></form></td>`,
		data.BasePath, row.ID)
	fmt.Fprintf(w, `<td><form method="POST" action="%s/confirmed/%d/delete" onsubmit="return confirm('Delete row %d? The server copy is removed.')"><button class="btn btn-ghost btn-xs text-error">Delete</button></form></td></tr>`,
		data.BasePath, row.ID, row.ID)
}

func writeConfirmedEditRow(w io.Writer, data PageData, row models.WorkItemRow) {
	fmt.Fprintf(w, `<tr class="bg-warning/10"><td>%d<form method="POST" action="%s/confirmed/%d" id="edit-%d"></form></td>`,
		row.ID, data.BasePath, row.ID, row.ID)
	formID := fmt.Sprintf("edit-%d", row.ID)
	writeFieldCells(w, data, row, formID)
	fmt.Fprintf(w, `<td><button class="btn btn-primary btn-xs" form="%s">Save</button></td>`, formID)
	fmt.Fprintf(w, `<td><a class="btn btn-ghost btn-xs" href="%s">Cancel</a></td></tr>`, data.BasePath)
}

func writeDraftRow(w io.Writer, data PageData, row models.WorkItemRow) {
	fmt.Fprintf(w, `<tr class="bg-info/10"><td>%d <span class="badge badge-outline badge-xs">draft</span><form method="POST" action="%s/rows/%d" id="draft-%d"></form></td>`,
		row.ID, data.BasePath, row.ID, row.ID)
	formID := fmt.Sprintf("draft-%d", row.ID)
	writeFieldCells(w, data, row, formID)
	fmt.Fprintf(w, `<td><button class="btn btn-primary btn-xs" form="%s">Save</button></td>`, formID)
	fmt.Fprintf(w, `<td><form method="POST" action="%s/rows/%d/delete"><button class="btn btn-ghost btn-xs text-error">Remove</button></form></td></tr>`,
		data.BasePath, row.ID)
}

// writeFieldCells emits the editable input cells for one row, all bound to
// the row's form element by id.
func writeFieldCells(w io.Writer, data PageData, row models.WorkItemRow, formID string) {
	if data.Kind == models.KindWorkDetail {
		textCell(w, formID, "description", row.Description)
		textCell(w, formID, "assignee", row.Assignee)
		timeCell(w, formID, "time_in", row.TimeIn)
		timeCell(w, formID, "time_out", row.TimeOut)
		statusCell(w, data.Kind, formID, row.Status)
		fmt.Fprintf(w, `<td><input class="input input-bordered input-xs w-16" form="%s" name="progress" value="%s"></td>`,
			formID, progressText(row))
		textCell(w, formID, "remark", row.Remark)
		return
	}

	partCell(w, data, formID, row.PartNumber)
	fmt.Fprintf(w, `<td><input class="input input-bordered input-xs w-16" form="%s" name="quantity" value="%d"></td>`, formID, row.Quantity)
	fmt.Fprintf(w, `<td><input class="input input-bordered input-xs w-20" form="%s" name="unit_price" value="%.2f"></td>`, formID, row.UnitPrice)
	statusCell(w, data.Kind, formID, row.Status)
	textCell(w, formID, "remark", row.Remark)
}

func textCell(w io.Writer, formID, name, value string) {
	fmt.Fprintf(w, `<td><input class="input input-bordered input-xs" form="%s" name="%s" value="%s"></td>`,
		formID, name, esc(value))
}

func timeCell(w io.Writer, formID, name, value string) {
	fmt.Fprintf(w, `<td><input class="input input-bordered input-xs w-24" type="time" form="%s" name="%s" value="%s"></td>`,
		formID, name, esc(value))
}

func statusCell(w io.Writer, kind models.RowKind, formID, current string) {
	fmt.Fprintf(w, `<td><select class="select select-bordered select-xs" form="%s" name="status">`, formID)
	fmt.Fprintf(w, `<option value=""%s>-</option>`, selected(current == ""))
	for _, st := range models.StatusesFor(kind) {
		fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(st), selected(st == current), esc(st))
	}
	io.WriteString(w, `</select></td>`)
}

func partCell(w io.Writer, data PageData, formID, current string) {
	if len(data.Parts) == 0 {
		textCell(w, formID, "part_number", current)
		return
	}
	fmt.Fprintf(w, `<td><select class="select select-bordered select-xs" form="%s" name="part_number">`, formID)
	fmt.Fprintf(w, `<option value=""%s>-</option>`, selected(current == ""))
	listed := false
	for _, part := range data.Parts {
		if part.PartNumber == current {
			listed = true
		}
		fmt.Fprintf(w, `<option value="%s"%s>%s (%s)</option>`,
			esc(part.PartNumber), selected(part.PartNumber == current), esc(part.PartNumber), esc(part.Name))
	}
	if current != "" && !listed {
		fmt.Fprintf(w, `<option value="%s" selected>%s</option>`, esc(current), esc(current))
	}
	io.WriteString(w, `</select></td>`)
}

func selected(on bool) string {
	if on {
		return " selected"
	}
	return ""
}

func progressText(row models.WorkItemRow) string {
	if !row.HasProgress() {
		return ""
	}
	return strconv.Itoa(*row.Progress)
}

func writeAddRowForm(w io.Writer, data PageData) {
	io.WriteString(w, `<div class="flex gap-2 mt-4">`)
	fmt.Fprintf(w, `<form method="POST" action="%s/rows"><button class="btn btn-outline btn-sm">Add Row</button></form>`, data.BasePath)
	fmt.Fprintf(w, `<form method="POST" action="%s/submit" onsubmit="return confirm('Submit all draft rows to the server?')"><button class="btn btn-primary btn-sm">Submit Drafts</button></form>`, data.BasePath)
	io.WriteString(w, `</div>`)
}

func writeSummary(w io.Writer, data PageData) {
	sum := data.Summary
	fmt.Fprintf(w, `<div class="stats shadow-sm mt-4"><div class="stat py-2"><div class="stat-title">Rows</div><div class="stat-value text-lg">%d</div></div>`, sum.Total)
	if data.Kind == models.KindWorkDetail {
		fmt.Fprintf(w, `<div class="stat py-2"><div class="stat-title">Average Progress</div><div class="stat-value text-lg">%d%%</div></div>`, sum.AverageProgress)
		fmt.Fprintf(w, `<div class="stat py-2"><div class="stat-title">Repair Status</div><div class="stat-value text-lg">%s</div></div>`, esc(sum.ParentStatus))
	}
	io.WriteString(w, `</div><div class="mt-2 text-sm opacity-70">`)
	for _, st := range append(models.StatusesFor(data.Kind), reconcile.UnknownStatus) {
		if n := sum.Histogram[st]; n > 0 {
			fmt.Fprintf(w, `<span class="badge badge-ghost mr-1">%s: %d</span>`, esc(st), n)
		}
	}
	io.WriteString(w, `</div>`)
}
