// Package web embeds the HTML templates rendered by the server.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

// Engine returns the Fiber template engine backed by the embedded templates.
// Template names are the file paths relative to templates/ without the
// extension, e.g. "index" or "partials/header".
func Engine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The subtree is embedded at compile time; a failure here is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
