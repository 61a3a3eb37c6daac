package web

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
)

// NewStaticRouter serves the pre-built client bundle. The bundle is
// opaque to the server: a path maps to bytes, the root to index.html.
func NewStaticRouter(staticDir string, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "/" {
			name = "/index.html"
		}

		path := filepath.Join(staticDir, filepath.Clean(name))
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("static file not found", slog.String("path", name))
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write(data)
	})

	return router
}

// NewGameRouter mounts the websocket endpoint. The game protocol lives
// entirely inside the socket; every path upgrades.
func NewGameRouter(supervisor http.Handler) http.Handler {
	router := mux.NewRouter()
	router.PathPrefix("/").Handler(supervisor)
	return router
}

// FindStaticDir looks for the client bundle directory
func FindStaticDir() string {
	candidates := []string{
		"front",
		"./front",
		filepath.Join(os.Getenv("PWD"), "front"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return "front"
}
