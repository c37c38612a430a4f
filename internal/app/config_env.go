package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overlays ARTICLE_READER_* environment variables onto cfg and
// resolves the serverless flag. Called once at startup; the pipeline itself
// never reads the environment.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_EDGE_MODEL")); v != "" {
		cfg.EdgeModel = v
	}
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_EDGE_URL")); v != "" {
		cfg.EdgeURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_EDGE_TIMEOUT_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.EdgeTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if strings.TrimSpace(os.Getenv("ARTICLE_READER_FORCE_EDGE")) == "1" {
		cfg.ForceEdge = true
	}
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_OPENAI_BASE")); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_OPENAI_KEY")); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ARTICLE_READER_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if DetectServerless() {
		cfg.Serverless = true
	}
}

// DetectServerless reports whether the process runs on a serverless platform,
// where subprocess provisioning and a local embedding server are unavailable.
func DetectServerless() bool {
	for _, key := range []string{"VERCEL", "VERCEL_ENV", "NOW_REGION", "AWS_LAMBDA_FUNCTION_NAME"} {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			return true
		}
	}
	return false
}
