package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/articlereader/articlereader/internal/app"
	"github.com/articlereader/articlereader/internal/server"
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

	defaultAddr := ":4317"
	if p := strings.TrimSpace(os.Getenv("ARTICLE_READER_PORT")); p != "" {
		defaultAddr = ":" + strings.TrimPrefix(p, ":")
	}

	var (
		addr       string
		configPath string
	)
	flag.StringVar(&addr, "addr", defaultAddr, "Listen address")
	flag.StringVar(&configPath, "config", "", "Path to YAML/JSON config file")
	flag.StringVar(&cfg.EdgeModel, "edge.model", cfg.EdgeModel, "Embedding model name")
	flag.StringVar(&cfg.EdgeURL, "edge.url", cfg.EdgeURL, "Ollama-style embedding server base URL")
	flag.StringVar(&cfg.OutputDir, "out.dir", cfg.OutputDir, "Directory for saved artifacts")
	flag.BoolVar(&cfg.EnablePDF, "pdf", cfg.EnablePDF, "Also render PDF artifacts")
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

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		// Extraction can chain slow fetch tiers; give handlers room.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  90 * time.Second,
	}

	log.Info().Str("addr", addr).Bool("serverless", cfg.Serverless).Msg("articlereaderd listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
