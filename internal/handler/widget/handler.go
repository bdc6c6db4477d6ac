package widget

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var page []byte

// Handler serves the embedded chat widget page.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	})
}
