// Package resolve classifies an arbitrary input string (URL, local file,
// inline markup, or plain text) and resolves it into raw content, escalating
// through fetch tiers for URLs.
package resolve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/articlereader/articlereader/internal/fetch"
)

// Kind classifies one raw input string.
type Kind string

const (
	KindURL        Kind = "url"
	KindFile       Kind = "file"
	KindInlineHTML Kind = "html"
	KindInlineText Kind = "text"
)

// Source type labels carried on resolved documents and results.
const (
	SourceURL  = "url"
	SourceFile = "file"
	SourceHTML = "html"
	SourceText = "text"

	// SourceInline labels documents whose content came directly from the
	// request rather than a location.
	SourceInline = "inline"
)

// InputSpec is the classified form of one input, derived once per request.
type InputSpec struct {
	Kind Kind
	Raw  string
}

var reURLPrefix = regexp.MustCompile(`(?i)^https?://`)

var htmlTokens = []string{"<html", "<body", "<article", "<main", "<p>"}

// Classify trims the input, strips a view-source: prefix, and decides how to
// resolve it. An existing regular file beats the inline interpretations.
func Classify(raw string) InputSpec {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "view-source:") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "view-source:"))
	}
	if s == "" {
		return InputSpec{Kind: KindInlineText, Raw: ""}
	}
	if reURLPrefix.MatchString(s) {
		return InputSpec{Kind: KindURL, Raw: s}
	}
	if abs, err := filepath.Abs(s); err == nil {
		if st, err := os.Stat(abs); err == nil && st.Mode().IsRegular() {
			return InputSpec{Kind: KindFile, Raw: abs}
		}
	}
	if looksLikeHTML(s) {
		return InputSpec{Kind: KindInlineHTML, Raw: s}
	}
	return InputSpec{Kind: KindInlineText, Raw: s}
}

func looksLikeHTML(s string) bool {
	l := strings.ToLower(s)
	for _, tok := range htmlTokens {
		if strings.Contains(l, tok) {
			return true
		}
	}
	return false
}

// FetchedDocument is the resolved content for one request.
type FetchedDocument struct {
	SourceType string
	Source     string
	Body       string
}

// Options configures the fetch tiers behind a Resolver.
type Options struct {
	HTTPClient        *http.Client
	PerRequestTimeout time.Duration
	CurlBinary        string
	VenvDir           string
	CFScript          string
	// Serverless disables the challenge-solving tier: constrained runtimes
	// cannot provision a Python environment.
	Serverless bool
}

// Resolver turns classified inputs into documents.
type Resolver struct {
	chain *fetch.Chain
}

// NewResolver wires the three-tier URL fetch chain: direct GET, curl, then a
// challenge-solving scrape when the body still reads as access-blocked.
func NewResolver(opts Options) *Resolver {
	timeout := opts.PerRequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &fetch.Client{HTTPClient: opts.HTTPClient, PerRequestTimeout: timeout}
	curl := &fetch.CurlRunner{Binary: opts.CurlBinary}
	scraper := &fetch.Cloudscraper{VenvDir: opts.VenvDir, ScriptPath: opts.CFScript}

	tiers := []fetch.Tier{
		{
			Name:      "direct",
			ShouldRun: func(body []byte, err error) bool { return body == nil && err == nil },
			Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
				b, ct, err := client.Get(ctx, rawURL)
				if err != nil {
					return nil, err
				}
				return []byte(decodeBody(b, ct)), nil
			},
		},
		{
			Name:      "curl",
			ShouldRun: func(body []byte, err error) bool { return body == nil && err != nil },
			Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
				return curl.Fetch(ctx, rawURL)
			},
		},
		{
			Name: "cloudscraper",
			ShouldRun: func(body []byte, err error) bool {
				return body != nil && fetch.LooksLikeAccessBlock(string(body)) && !opts.Serverless
			},
			Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
				return scraper.Fetch(ctx, rawURL)
			},
		},
	}
	return &Resolver{chain: &fetch.Chain{Tiers: tiers}}
}

// Resolve produces the document for a classified input. It fails only when a
// URL could not be fetched by any tier or a file could not be read; inline
// inputs always resolve.
func (r *Resolver) Resolve(ctx context.Context, spec InputSpec) (FetchedDocument, error) {
	switch spec.Kind {
	case KindURL:
		body, err := r.chain.Fetch(ctx, spec.Raw)
		if err != nil {
			return FetchedDocument{}, err
		}
		return FetchedDocument{SourceType: SourceURL, Source: spec.Raw, Body: string(body)}, nil
	case KindFile:
		b, err := os.ReadFile(spec.Raw)
		if err != nil {
			return FetchedDocument{}, fmt.Errorf("read file: %w", err)
		}
		return FetchedDocument{SourceType: SourceFile, Source: spec.Raw, Body: string(b)}, nil
	case KindInlineHTML:
		return FetchedDocument{SourceType: SourceHTML, Source: SourceInline, Body: spec.Raw}, nil
	default:
		return FetchedDocument{SourceType: SourceText, Source: SourceInline, Body: spec.Raw}, nil
	}
}
