package app

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Config holds runtime configuration for the extraction pipeline. It is an
// explicit value passed in at construction so the pipeline stays a pure
// function of (input, query, topK, config); nothing inside the pipeline reads
// ambient process state.
type Config struct {
	// Relevance scoring
	EdgeModel   string        // embedding model name
	EdgeURL     string        // Ollama-style embedding server base URL
	EdgeTimeout time.Duration // per-embedding-call budget
	ForceEdge   bool          // attempt embeddings even in serverless contexts

	// OpenAIBaseURL switches embedding calls to an OpenAI-compatible API.
	OpenAIBaseURL string
	OpenAIAPIKey  string

	// Fetching
	FetchTimeout time.Duration
	CurlBinary   string
	VenvDir      string // cloudscraper interpreter environment
	CFScript     string // cloudscraper helper script path

	// Serverless marks a constrained runtime: no subprocess provisioning,
	// no reachable local embedding server.
	Serverless bool

	// Artifacts
	OutputDir string
	EnablePDF bool

	Verbose bool
}

// DefaultConfig returns the baseline configuration; flags, config file, and
// environment overlay it.
func DefaultConfig() Config {
	return Config{
		EdgeModel:    "nomic-embed-text",
		EdgeURL:      "http://127.0.0.1:11434",
		EdgeTimeout:  5 * time.Second,
		FetchTimeout: 30 * time.Second,
		CurlBinary:   "curl",
		VenvDir:      ".venv_cf",
		CFScript:     filepath.Join("scripts", "cf_fetch.py"),
		OutputDir:    "Extracted Articles",
	}
}

// ValidateConfig rejects configurations that cannot produce a working
// pipeline. Called once after all overlays are applied.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.EdgeModel) == "" {
		return errors.New("config: edge model must not be empty")
	}
	if strings.TrimSpace(cfg.EdgeURL) == "" && strings.TrimSpace(cfg.OpenAIBaseURL) == "" && !cfg.Serverless {
		return errors.New("config: an embedding endpoint is required outside serverless runtimes")
	}
	if cfg.EdgeTimeout < 0 || cfg.FetchTimeout < 0 {
		return errors.New("config: timeouts must not be negative")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("config: output dir must not be empty")
	}
	return nil
}
