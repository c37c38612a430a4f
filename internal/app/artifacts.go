package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SavedArtifacts describes where one extraction result was persisted.
type SavedArtifacts struct {
	Storage  string `json:"storage"`
	Dir      string `json:"dir"`
	JSONName string `json:"jsonName"`
	TextName string `json:"textName"`
	JSONPath string `json:"jsonPath,omitempty"`
	TextPath string `json:"textPath,omitempty"`
	PDFPath  string `json:"pdfPath,omitempty"`
	Warning  string `json:"warning,omitempty"`

	// TextPayload is the rendered text artifact, kept for callers that want
	// to write it elsewhere as well.
	TextPayload string `json:"-"`
}

var reSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 72 {
		s = strings.Trim(s[:72], "-")
	}
	if s == "" {
		return "article"
	}
	return s
}

// SaveExtractionResult writes the timestamped JSON and text artifacts for one
// result (plus a PDF when enabled). In a serverless runtime a write failure
// degrades to an in-memory artifact with a warning instead of failing the
// request.
func SaveExtractionResult(cfg Config, res *ExtractionResult) (SavedArtifacts, error) {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format(time.RFC3339))
	base := stamp + "__" + slugify(res.Title)
	textPayload := res.Title + "\n\n" + res.ArticleText + "\n"

	saved := SavedArtifacts{
		Storage:     "local",
		Dir:         cfg.OutputDir,
		JSONName:    base + ".json",
		TextName:    base + ".txt",
		TextPayload: textPayload,
	}

	if err := writeArtifacts(cfg, res, &saved, textPayload); err != nil {
		if cfg.Serverless {
			log.Warn().Err(err).Msg("artifact write failed in serverless runtime, keeping result in memory")
			saved.Storage = "memory"
			saved.Dir = "serverless-ephemeral"
			saved.JSONPath = ""
			saved.TextPath = ""
			saved.Warning = fmt.Sprintf("save_fallback:%v", err)
			return saved, nil
		}
		return saved, err
	}
	return saved, nil
}

func writeArtifacts(cfg Config, res *ExtractionResult, saved *SavedArtifacts, textPayload string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}

	jsonPath := filepath.Join(cfg.OutputDir, saved.JSONName)
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write json artifact: %w", err)
	}
	saved.JSONPath = jsonPath

	textPath := filepath.Join(cfg.OutputDir, saved.TextName)
	if err := os.WriteFile(textPath, []byte(textPayload), 0o644); err != nil {
		return fmt.Errorf("write text artifact: %w", err)
	}
	saved.TextPath = textPath

	if cfg.EnablePDF {
		pdfPath := strings.TrimSuffix(jsonPath, ".json") + ".pdf"
		if err := writeArticlePDF(res, pdfPath); err != nil {
			// PDF rendering is best-effort; the JSON and text artifacts
			// are already on disk.
			log.Warn().Err(err).Msg("pdf artifact failed")
		} else {
			saved.PDFPath = pdfPath
		}
	}
	return nil
}
