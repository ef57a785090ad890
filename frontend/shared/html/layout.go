package html

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"garagedesk/frontend/shared/nav"
)

// Layout wraps a screen body in the shared page chrome: head, top navigation
// and the flash banner. active selects the highlighted nav entry.
func Layout(title, active, flash string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!doctype html><html data-theme="light"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s | garagedesk</title><link rel="stylesheet" href="/assets/app.css"></head><body class="min-h-screen bg-base-200">`,
			templ.EscapeString(title)); err != nil {
			return err
		}
		if err := topNav(active).Render(ctx, w); err != nil {
			return err
		}
		if flash != "" {
			if _, err := fmt.Fprintf(w, `<div class="alert alert-info mx-4 mt-3">%s</div>`, templ.EscapeString(flash)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<main class="p-4">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</main>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, CSRFFormScript()); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func topNav(active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="navbar bg-base-100 shadow-sm"><div class="navbar-start px-2 font-bold">garagedesk</div><div class="navbar-center gap-1">`); err != nil {
			return err
		}
		for _, link := range nav.Links() {
			class := "btn btn-ghost btn-sm"
			if link.Key == active {
				class = "btn btn-ghost btn-sm btn-active"
			}
			if _, err := fmt.Fprintf(w, `<a class="%s" href="%s">%s</a>`,
				class, templ.EscapeString(link.Href), templ.EscapeString(link.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div><div class="navbar-end"></div></nav>`)
		return err
	})
}

// Raw renders a pre-built HTML fragment. Callers are responsible for escaping
// any user-supplied values inside it.
func Raw(fragment string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, fragment)
		return err
	})
}

// CSRFFormScript injects a hidden _csrf field into POST forms based on the
// CSRF cookie.
func CSRFFormScript() string {
	return `<script>
(function () {
  function getCookie(name) {
    var prefix = name + "=";
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
    }
    return "";
  }

  function inject() {
    var token = getCookie("garagedesk_csrf");
    if (!token) return;

    var forms = document.querySelectorAll("form");
    for (var i = 0; i < forms.length; i++) {
      var form = forms[i];
      var method = (form.getAttribute("method") || "GET").toUpperCase();
      if (method !== "POST") continue;
      if (form.querySelector("input[name='_csrf']")) continue;

      var input = document.createElement("input");
      input.type = "hidden";
      input.name = "_csrf";
      input.value = token;
      form.appendChild(input);
    }
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", inject);
  } else {
    inject();
  }
})();
</script>`
}
