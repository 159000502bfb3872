package assets

import (
	"embed"
	"html/template"
)

//go:embed index.html
var FS embed.FS

// IndexTemplate parses the single-page client.
func IndexTemplate() (*template.Template, error) {
	return template.ParseFS(FS, "index.html")
}

// IndexData is rendered into index.html.
type IndexData struct {
	Difficulties []string
	Genres       []string
}
