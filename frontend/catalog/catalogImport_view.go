package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
	"garagedesk/models"
)

type PageData struct {
	Message string
	Parts   []models.SparePart
}

func ImportPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="card bg-base-100 shadow-sm mb-4"><div class="card-body py-3">`)
		io.WriteString(w, `<h2 class="card-title text-base">Import Parts CSV</h2>`)
		io.WriteString(w, `<form method="POST" action="/desk/catalog/import" enctype="multipart/form-data" class="flex gap-2 items-center">`)
		io.WriteString(w, `<input class="file-input file-input-bordered file-input-sm" type="file" name="file" accept=".csv">`)
		io.WriteString(w, `<button class="btn btn-primary btn-sm">Import</button></form></div></div>`)

		io.WriteString(w, `<div class="overflow-x-auto"><table class="table table-zebra bg-base-100">`)
		io.WriteString(w, `<thead><tr><th>Part No</th><th>Name</th><th>Unit Price</th><th></th></tr></thead><tbody>`)
		for _, part := range data.Parts {
			fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%.2f</td>`,
				templ.EscapeString(part.PartNumber), templ.EscapeString(part.Name), part.UnitPrice)
			fmt.Fprintf(w, `<td><form method="POST" action="/desk/catalog/delete/%d" onsubmit="return confirm('Delete part %s?')"><button class="btn btn-ghost btn-xs text-error">Delete</button></form></td></tr>`,
				part.ID, templ.EscapeString(part.PartNumber))
		}
		_, err := io.WriteString(w, `</tbody></table></div>`)
		return err
	})
	return sharedhtml.Layout("Parts Catalog", "catalog", data.Message, body)
}
