package dashboard

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Render writes the HTML dashboard for v.
func Render(w io.Writer, v View) error {
	return page.ExecuteTemplate(w, "dashboard.html", v)
}
