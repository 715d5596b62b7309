// Package web holds the server-rendered presentation layer: embedded HTML
// templates rendered through Fiber's views engine plus the static assets
// (stylesheet and the page script) served under /static.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// LayoutMain is the shared page shell; handlers pass it as the layout
// argument to c.Render.
const LayoutMain = "layouts/main"

// NewEngine builds the Fiber views engine from the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// embed guarantees the directory exists; a failure here is a build defect
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

// StaticFS exposes the embedded static assets for the filesystem middleware.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
