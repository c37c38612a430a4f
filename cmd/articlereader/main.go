package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/articlereader/articlereader/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env", ".env.local"); err != nil {
		log.Warn().Err(err).Msg("dotenv load")
	}

	cfg := app.DefaultConfig()
	app.ApplyEnv(&cfg)

	var (
		input      string
		inputShort string
		query      string
		queryShort string
		topK       int
		configPath string
		jsonOut    string
		textOut    string
		noSave     bool
	)

	flag.StringVar(&input, "input", "", "URL, file path, raw HTML, or plain text to analyze")
	flag.StringVar(&inputShort, "i", "", "Shorthand for -input")
	flag.StringVar(&query, "query", "", "Relevance query; derived from the page when empty")
	flag.StringVar(&queryShort, "q", "", "Shorthand for -query")
	flag.IntVar(&topK, "top", 0, "How many relevant passages to return (0 = default)")
	flag.StringVar(&configPath, "config", "", "Path to YAML/JSON config file")
	flag.StringVar(&jsonOut, "json-out", "", "Also write the result JSON to this path")
	flag.StringVar(&textOut, "text-out", "", "Also write the article text to this path")
	flag.BoolVar(&noSave, "no-save", false, "Skip writing timestamped artifacts")
	flag.StringVar(&cfg.EdgeModel, "edge.model", cfg.EdgeModel, "Embedding model name")
	flag.StringVar(&cfg.EdgeURL, "edge.url", cfg.EdgeURL, "Ollama-style embedding server base URL")
	flag.DurationVar(&cfg.EdgeTimeout, "edge.timeout", cfg.EdgeTimeout, "Per-embedding-call budget")
	flag.BoolVar(&cfg.ForceEdge, "force-edge", cfg.ForceEdge, "Attempt embeddings even in serverless runtimes")
	flag.StringVar(&cfg.OpenAIBaseURL, "openai.base", cfg.OpenAIBaseURL, "OpenAI-compatible base URL for embeddings (optional)")
	flag.StringVar(&cfg.OpenAIAPIKey, "openai.key", cfg.OpenAIAPIKey, "API key for the OpenAI-compatible server")
	flag.DurationVar(&cfg.FetchTimeout, "fetch.timeout", cfg.FetchTimeout, "Per-request fetch budget")
	flag.StringVar(&cfg.OutputDir, "out.dir", cfg.OutputDir, "Directory for saved artifacts")
	flag.BoolVar(&cfg.EnablePDF, "pdf", cfg.EnablePDF, "Also render a PDF artifact")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.Parse()

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if input == "" {
		input = inputShort
	}
	if query == "" {
		query = queryShort
	}
	if input == "" && flag.NArg() > 0 {
		input = flag.Arg(0)
	}
	if input == "" {
		input = readPipedStdin()
	}
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(os.Stderr, "usage: articlereader -input <url|file|html|text> [-query <terms>] [-top N]")
		os.Exit(2)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	a := app.New(cfg)
	res, err := a.ExtractRelevantArticle(context.Background(), app.Request{Input: input, Query: query, TopK: topK})
	if err != nil {
		log.Error().Err(err).Msg("extraction failed")
		if res != nil {
			printJSON(res)
		}
		os.Exit(1)
	}

	logPreview(res)

	if !noSave {
		saved, err := app.SaveExtractionResult(cfg, res)
		if err != nil {
			log.Warn().Err(err).Msg("artifact save failed")
		} else {
			log.Info().Str("json", saved.JSONPath).Str("text", saved.TextPath).Msg("artifacts saved")
			if saved.PDFPath != "" {
				log.Info().Str("pdf", saved.PDFPath).Msg("pdf saved")
			}
		}
	}
	if jsonOut != "" {
		if err := writeResultJSON(res, jsonOut); err != nil {
			log.Warn().Err(err).Str("path", jsonOut).Msg("json copy failed")
		}
	}
	if textOut != "" {
		payload := res.Title + "\n\n" + res.ArticleText + "\n"
		if err := os.WriteFile(textOut, []byte(payload), 0o644); err != nil {
			log.Warn().Err(err).Str("path", textOut).Msg("text copy failed")
		}
	}

	printJSON(res)
}

// readPipedStdin returns stdin's content when the process is fed through a
// pipe, and "" when stdin is a terminal.
func readPipedStdin() string {
	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return string(b)
}

const articlePreviewChars = 1200

func logPreview(res *app.ExtractionResult) {
	ev := log.Info().
		Str("sourceType", res.SourceType).
		Str("title", res.Title).
		Int("paragraphs", res.ParagraphCount).
		Int("passages", len(res.RelevantPassages)).
		Str("ranking", res.Ranking.Method)
	if res.Ranking.Model != "" {
		ev = ev.Str("model", res.Ranking.Model)
	}
	if res.Blocked {
		ev = ev.Bool("blocked", true)
	}
	if res.Warning != "" {
		ev = ev.Str("warning", res.Warning)
	}
	ev.Msg("extraction complete")

	w := os.Stderr
	if res.Byline != "" {
		fmt.Fprintf(w, "byline: %s\n", res.Byline)
	}
	if len(res.RelevantPassages) > 0 {
		fmt.Fprintln(w, "top passages:")
		for i, p := range res.RelevantPassages {
			fmt.Fprintf(w, "  %d. [%.4f] %s\n", i+1, p.Score, snippet(p.Text, 200))
		}
	}
	if res.ArticleText != "" {
		fmt.Fprintf(w, "article preview:\n%s\n", snippet(res.ArticleText, articlePreviewChars))
	}
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func writeResultJSON(res *app.ExtractionResult, path string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func printJSON(res *app.ExtractionResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
