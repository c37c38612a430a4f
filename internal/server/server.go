// Package server exposes the extraction pipeline over HTTP: one JSON
// endpoint plus read-only access to saved artifacts.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/articlereader/articlereader/internal/app"
)

// maxRequestBytes bounds the request body; inline HTML documents are the
// largest expected payload.
const maxRequestBytes = 4 << 20

type extractRequest struct {
	Input string `json:"input"`
	Query string `json:"query"`
	Top   int    `json:"top"`
}

type extractResponse struct {
	OK     bool                  `json:"ok"`
	Error  string                `json:"error,omitempty"`
	Result *app.ExtractionResult `json:"result,omitempty"`
	Saved  *app.SavedArtifacts   `json:"saved,omitempty"`
}

// Server handles the HTTP surface. Construct with New.
type Server struct {
	cfg app.Config
	app *app.App
	mux *http.ServeMux
}

func New(cfg app.Config) *Server {
	s := &Server{cfg: cfg, app: app.New(cfg), mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/extract", s.handleExtract)
	s.mux.HandleFunc("/files/", s.handleFile)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, extractResponse{Error: "method_not_allowed"})
		return
	}

	var req extractRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, extractResponse{Error: "invalid_json"})
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeJSON(w, http.StatusBadRequest, extractResponse{Error: "missing_input"})
		return
	}

	start := time.Now()
	res, err := s.app.ExtractRelevantArticle(r.Context(), app.Request{
		Input: req.Input,
		Query: req.Query,
		TopK:  req.Top,
	})
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("extraction failed")
		resp := extractResponse{Error: errorCode(err)}
		if res != nil {
			resp.Result = res
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	saved, err := app.SaveExtractionResult(s.cfg, res)
	if err != nil {
		// The extraction itself succeeded; report the result without paths.
		log.Warn().Err(err).Msg("artifact save failed")
		writeJSON(w, http.StatusOK, extractResponse{OK: true, Result: res})
		return
	}

	log.Info().
		Str("sourceType", res.SourceType).
		Int("passages", len(res.RelevantPassages)).
		Dur("elapsed", time.Since(start)).
		Msg("extraction served")
	writeJSON(w, http.StatusOK, extractResponse{OK: true, Result: res, Saved: &saved})
}

// handleFile serves a single saved artifact by name. The name is reduced to
// its base component so the handler cannot read outside the output directory.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/files/"))
	if name == "." || name == "/" || name == "" {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.cfg.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// errorCode keeps error strings stable for API clients: sentinel errors pass
// through, everything else is reported as a fetch failure.
func errorCode(err error) string {
	if errors.Is(err, app.ErrEmptyInput) {
		return app.ErrEmptyInput.Error()
	}
	return "fetch_failed"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("response write failed")
	}
}
