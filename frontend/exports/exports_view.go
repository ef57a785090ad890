package exports

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
	"garagedesk/models"
)

func ExportsPage(cards []models.JobCard, flash string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="overflow-x-auto"><table class="table table-zebra bg-base-100">`)
		io.WriteString(w, `<thead><tr><th>Job Card</th><th>Plate</th><th>Customer</th><th>Downloads</th></tr></thead><tbody>`)
		for _, card := range cards {
			esc := url.PathEscape(card.JobCardNo)
			fmt.Fprintf(w, `<tr><td class="font-bold">%s</td><td>%s</td><td>%s</td><td class="flex gap-1 flex-wrap">`,
				templ.EscapeString(card.JobCardNo), templ.EscapeString(card.PlateNumber), templ.EscapeString(card.CustomerName))
			fmt.Fprintf(w, `<a class="btn btn-ghost btn-xs" href="/desk/exports/jobcard/%s.pdf">Card PDF</a>`, esc)
			for _, seg := range []struct{ path, label string }{
				{"workorders", "Work Orders"},
				{"requests", "Spare Requests"},
				{"changes", "Spare Changes"},
			} {
				fmt.Fprintf(w, `<a class="btn btn-ghost btn-xs" href="/desk/exports/rows/%s/%s.xlsx">%s xlsx</a>`, seg.path, esc, seg.label)
				fmt.Fprintf(w, `<a class="btn btn-ghost btn-xs" href="/desk/exports/rows/%s/%s.xlsx?format=csv">csv</a>`, seg.path, esc)
			}
			io.WriteString(w, `</td></tr>`)
		}
		if len(cards) == 0 {
			io.WriteString(w, `<tr><td colspan="4" class="text-center opacity-60">No job cards</td></tr>`)
		}
		_, err := io.WriteString(w, `</tbody></table></div>`)
		return err
	})
	return sharedhtml.Layout("Exports", "exports", flash, body)
}
