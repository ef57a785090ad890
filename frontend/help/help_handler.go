package help

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
)

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage().Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}

func HelpPage() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="prose max-w-2xl">
<h2>How the desk works</h2>
<ul>
<li><b>Drafts are local.</b> Rows you add stay on this desk until you press Submit Drafts. They survive a restart.</li>
<li><b>Confirmed rows come from the server.</b> The desk polls for them; if the server is unreachable the last known rows stay on screen.</li>
<li><b>One edit at a time.</b> Only one confirmed row can be in edit mode; saving sends the change to the server before the table updates.</li>
<li><b>Deletes ask twice.</b> Deleting a confirmed row removes the server copy, so the desk asks for confirmation and waits for the server to acknowledge.</li>
<li><b>Add Row is guarded.</b> If the desk is still assigning an id for the previous row, wait for the banner to clear.</li>
<li><b>Parts Catalog</b> feeds the part dropdown on the spare screens. Import it from CSV (part_number,name,unit_price).</li>
<li><b>Exports</b> produce the printable job card (plate barcode included) and Excel/CSV row dumps, drafts marked by origin.</li>
</ul>
</div>`)
		return err
	})
	return sharedhtml.Layout("Help", "help", "", body)
}
