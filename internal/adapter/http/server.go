package http

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// artifactPrefix is the URL path the output tree is served under, matching
// the layout clients fetch: /GSLA/{date}/{file}.
const artifactPrefix = "/GSLA/"

// Server exposes health, readiness, metrics and artifact HTTP endpoints.
type Server struct {
	httpServer *http.Server
	outputDir  string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes,
// serving the artifact tree rooted at outputDir under /GSLA/ and the list of
// complete date directories at /dates.
func NewServer(addr string, ready sharedobs.ReadinessChecker, outputDir string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		outputDir: outputDir,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /dates", s.handleDates)
	mux.Handle("GET "+artifactPrefix, http.StripPrefix(artifactPrefix, artifactHandler(outputDir)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleDates lists date directories that hold a metadata document, oldest
// first. A missing output root is an empty list.
func (s *Server) handleDates(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("list output dir", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot list dates"})
		return
	}

	type dated struct {
		name string
		date time.Time
	}
	var found []dated
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		d, err := domain.ParseDirName(e.Name())
		if err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.outputDir, e.Name(), domain.MetaFile)); err != nil {
			continue
		}
		found = append(found, dated{e.Name(), d})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].date.Before(found[j].date) })

	dates := make([]string, len(found))
	for i, d := range found {
		dates[i] = d.name
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"dates": dates})
}

// artifactHandler serves files from the output tree. Directory listings are
// refused so only known artifact paths resolve.
func artifactHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
}
