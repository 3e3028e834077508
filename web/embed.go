// Package web serves the embedded portal page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// reservedPrefixes are server routes that must never fall back to the page.
var reservedPrefixes = []string{"/api/", "/ws/"}

// SPAHandler serves files from dist/. Unknown paths get index.html so the
// portal's client-side tabs survive a reload, except under the API and
// live-event prefixes, which answer a JSON 404.
func SPAHandler() http.Handler {
	site, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: dist missing from embedded files: " + err.Error())
	}
	files := http.FileServer(http.FS(site))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
				return
			}
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name != "" && name != "index.html" {
			if info, err := fs.Stat(site, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		// Revalidate the page on every load.
		w.Header().Set("Cache-Control", "no-cache")
		r.URL.Path = "/"
		files.ServeHTTP(w, r)
	})
}
