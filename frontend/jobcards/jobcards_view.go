package jobcards

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
)

func ListPage(rows []CardRow, flash string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="overflow-x-auto"><table class="table table-zebra bg-base-100">`)
		io.WriteString(w, `<thead><tr><th>Job Card</th><th>Plate</th><th>Customer</th><th>Category</th><th>Status</th><th>Progress</th><th>Drafts</th><th></th></tr></thead><tbody>`)
		for _, row := range rows {
			esc := url.PathEscape(row.Card.JobCardNo)
			fmt.Fprintf(w, `<tr><td class="font-bold">%s</td><td>%s</td><td>%s</td><td>%s</td>`,
				templ.EscapeString(row.Card.JobCardNo), templ.EscapeString(row.Card.PlateNumber),
				templ.EscapeString(row.Card.CustomerName), templ.EscapeString(row.Card.RepairCategory))
			fmt.Fprintf(w, `<td><span class="badge">%s</span></td><td>%d%%</td>`,
				templ.EscapeString(row.Status), row.AverageProgress)
			draftBadge := ""
			if row.DraftCount > 0 {
				draftBadge = fmt.Sprintf(`<span class="badge badge-info">%d</span>`, row.DraftCount)
			}
			fmt.Fprintf(w, `<td>%s</td>`, draftBadge)
			fmt.Fprintf(w, `<td class="flex gap-1">`+
				`<a class="btn btn-ghost btn-xs" href="/desk/workorders/%s">Work Orders</a>`+
				`<a class="btn btn-ghost btn-xs" href="/desk/spares/requests/%s">Spare Requests</a>`+
				`<a class="btn btn-ghost btn-xs" href="/desk/spares/changes/%s">Spare Changes</a>`+
				`<a class="btn btn-ghost btn-xs" href="/desk/exports/jobcard/%s.pdf">Label</a>`+
				`</td></tr>`, esc, esc, esc, esc)
		}
		if len(rows) == 0 {
			io.WriteString(w, `<tr><td colspan="8" class="text-center opacity-60">No job cards</td></tr>`)
		}
		_, err := io.WriteString(w, `</tbody></table></div>`)
		return err
	})
	return sharedhtml.Layout("Job Cards", "jobcards", flash, body)
}
