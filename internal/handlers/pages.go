package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// PageHandler serves the browser front end. With no web root configured it
// renders a placeholder naming the requested page.
type PageHandler struct {
	root string
}

func NewPageHandler(root string) *PageHandler {
	return &PageHandler{root: root}
}

var placeholder = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Cinnamart</title></head>
<body><main><h1>Cinnamart</h1><p>{{.}}</p></main></body>
</html>
`))

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.root == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = placeholder.Execute(w, r.URL.Path)
		return
	}

	// unknown paths fall back to index.html so client-side routes resolve
	name := filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if fi, err := os.Stat(name); err != nil || fi.IsDir() {
		name = filepath.Join(h.root, "index.html")
	}
	http.ServeFile(w, r, name)
}
