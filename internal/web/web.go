// Package web holds the embedded HTML views rendered by the handlers.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded view templates.
// Embedding keeps handler tests independent of the working directory.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
