package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to flags and environment variables.
type FileConfig struct {
	Edge struct {
		Model     string `yaml:"model" json:"model"`
		URL       string `yaml:"url" json:"url"`
		TimeoutMS int    `yaml:"timeoutMS" json:"timeoutMS"`
		Force     bool   `yaml:"force" json:"force"`
	} `yaml:"edge" json:"edge"`

	OpenAI struct {
		BaseURL string `yaml:"base" json:"base"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"openai" json:"openai"`

	Fetch struct {
		TimeoutMS int    `yaml:"timeoutMS" json:"timeoutMS"`
		Curl      string `yaml:"curl" json:"curl"`
		VenvDir   string `yaml:"venvDir" json:"venvDir"`
		Script    string `yaml:"script" json:"script"`
	} `yaml:"fetch" json:"fetch"`

	Output struct {
		Dir string `yaml:"dir" json:"dir"`
		PDF bool   `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields still
// at their defaults, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	if cfg.EdgeModel == def.EdgeModel && fc.Edge.Model != "" {
		cfg.EdgeModel = fc.Edge.Model
	}
	if cfg.EdgeURL == def.EdgeURL && fc.Edge.URL != "" {
		cfg.EdgeURL = fc.Edge.URL
	}
	if cfg.EdgeTimeout == def.EdgeTimeout && fc.Edge.TimeoutMS > 0 {
		cfg.EdgeTimeout = time.Duration(fc.Edge.TimeoutMS) * time.Millisecond
	}
	if !cfg.ForceEdge && fc.Edge.Force {
		cfg.ForceEdge = true
	}

	if cfg.OpenAIBaseURL == "" && fc.OpenAI.BaseURL != "" {
		cfg.OpenAIBaseURL = fc.OpenAI.BaseURL
	}
	if cfg.OpenAIAPIKey == "" && fc.OpenAI.APIKey != "" {
		cfg.OpenAIAPIKey = fc.OpenAI.APIKey
	}

	if cfg.FetchTimeout == def.FetchTimeout && fc.Fetch.TimeoutMS > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.TimeoutMS) * time.Millisecond
	}
	if cfg.CurlBinary == def.CurlBinary && fc.Fetch.Curl != "" {
		cfg.CurlBinary = fc.Fetch.Curl
	}
	if cfg.VenvDir == def.VenvDir && fc.Fetch.VenvDir != "" {
		cfg.VenvDir = fc.Fetch.VenvDir
	}
	if cfg.CFScript == def.CFScript && fc.Fetch.Script != "" {
		cfg.CFScript = fc.Fetch.Script
	}

	if cfg.OutputDir == def.OutputDir && fc.Output.Dir != "" {
		cfg.OutputDir = fc.Output.Dir
	}
	if !cfg.EnablePDF && fc.Output.PDF {
		cfg.EnablePDF = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
