package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	sharedhtml "garagedesk/frontend/shared/html"
)

func SettingsPage(current DeskSettings, flash string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="card bg-base-100 shadow-sm max-w-md"><div class="card-body">`)
		io.WriteString(w, `<h2 class="card-title text-base">Refresh Settings</h2>`)
		io.WriteString(w, `<form method="POST" action="/desk/settings" class="flex flex-col gap-3">`)
		fmt.Fprintf(w, `<label class="form-control"><span class="label-text">Work order poll (seconds)</span><input class="input input-bordered input-sm" name="workorder_poll_seconds" value="%d"></label>`, current.WorkOrderPollSeconds)
		fmt.Fprintf(w, `<label class="form-control"><span class="label-text">Spare screens poll (seconds)</span><input class="input input-bordered input-sm" name="spare_poll_seconds" value="%d"></label>`, current.SparePollSeconds)
		checked := ""
		if current.PushEnabled {
			checked = " checked"
		}
		fmt.Fprintf(w, `<label class="label cursor-pointer justify-start gap-2"><input type="checkbox" class="checkbox checkbox-sm" name="push_enabled"%s><span class="label-text">Push row changes to open tabs</span></label>`, checked)
		io.WriteString(w, `<button class="btn btn-primary btn-sm">Save</button></form>`)
		_, err := io.WriteString(w, `</div></div>`)
		return err
	})
	return sharedhtml.Layout("Settings", "settings", flash, body)
}
