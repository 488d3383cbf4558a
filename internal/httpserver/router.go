package httpserver

import (
	"net/http"
	"os"
	"path/filepath"

	"lv-simtrade/internal/health"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	WSHandler     http.Handler
	HealthHandler *health.Handler
	UIDist        string
	Production    bool
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	if d.Production {
		r.Use(RedirectHTTPS)
	}
	r.Use(SecurityHeaders)

	r.Get("/health", d.HealthHandler.Get)
	r.Get("/ws", d.WSHandler.ServeHTTP)
	if d.UIDist != "" {
		r.Get("/admin", staticPage(d.UIDist, "admin.html"))
		r.NotFound(spaHandler(d.UIDist).ServeHTTP)
	}
	return r
}

func staticPage(dir, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		full := filepath.Join(dir, name)
		if _, err := os.Stat(full); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, full)
	}
}

func spaHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}
		clean := filepath.Clean(path)
		full := filepath.Join(dir, clean)
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
