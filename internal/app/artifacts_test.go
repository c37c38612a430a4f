package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Fraud Detection: 2026 Report!", "fraud-detection-2026-report"},
		{"   ", "article"},
		{"", "article"},
		{"ALL CAPS", "all-caps"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Fatalf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	long := slugify(strings.Repeat("word ", 40))
	if len(long) > 72 {
		t.Fatalf("slug not capped: %d chars", len(long))
	}
	if strings.HasSuffix(long, "-") || strings.HasPrefix(long, "-") {
		t.Fatalf("slug has dangling separator: %q", long)
	}
}

func TestSaveExtractionResult(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()

	res := &ExtractionResult{
		OK:          true,
		SourceType:  "text",
		Title:       "Fraud Detection Basics",
		ArticleText: "Paragraph one about fraud.\n\nParagraph two about biometrics.",
	}
	saved, err := SaveExtractionResult(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Storage != "local" || saved.Dir != cfg.OutputDir {
		t.Fatalf("unexpected storage: %+v", saved)
	}
	if ok, _ := regexp.MatchString(`^[0-9T-]+Z__fraud-detection-basics\.json$`, saved.JSONName); !ok {
		t.Fatalf("unexpected json name %q", saved.JSONName)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, saved.JSONName))
	if err != nil {
		t.Fatal(err)
	}
	var back ExtractionResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Title != res.Title || back.ArticleText != res.ArticleText {
		t.Fatalf("json artifact round trip lost fields: %+v", back)
	}

	text, err := os.ReadFile(filepath.Join(cfg.OutputDir, saved.TextName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), res.Title) || !strings.Contains(string(text), "biometrics") {
		t.Fatalf("text artifact incomplete: %q", string(text))
	}
}

func TestSaveExtractionResult_ServerlessFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serverless = true
	// Point at a path that cannot be created.
	blocker := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.OutputDir = filepath.Join(blocker, "out")

	res := &ExtractionResult{OK: true, Title: "t", ArticleText: "body"}
	saved, err := SaveExtractionResult(cfg, res)
	if err != nil {
		t.Fatalf("serverless save must not fail: %v", err)
	}
	if saved.Storage != "memory" || saved.Dir != "serverless-ephemeral" {
		t.Fatalf("expected in-memory fallback, got %+v", saved)
	}
	if !strings.HasPrefix(saved.Warning, "save_fallback:") {
		t.Fatalf("expected save_fallback warning, got %q", saved.Warning)
	}
	if saved.TextPayload == "" {
		t.Fatalf("text payload must survive the fallback")
	}
}
