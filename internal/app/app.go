// Package app composes input resolution, candidate extraction, and relevance
// ranking into one extraction pipeline.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/articlereader/articlereader/internal/extract"
	"github.com/articlereader/articlereader/internal/fetch"
	"github.com/articlereader/articlereader/internal/rank"
	"github.com/articlereader/articlereader/internal/resolve"
	"github.com/articlereader/articlereader/internal/textutil"
)

// TopK bounds for the requested passage count.
const (
	DefaultTopK = 6
	MinTopK     = 1
	MaxTopK     = 12
)

// minRankedCandidates is the floor on how many ranked candidates the markup
// branch requests, so passage composition always has enough material.
const minRankedCandidates = 6

const (
	queryFromTextChars  = 240
	passageNeedleChars  = 80
	passageDedupChars   = 180
	minComposedPassages = 3
	maxComposedPassages = 8
)

// ErrEmptyInput is the single terminal failure: no text to analyze after
// resolution. Every other degradation is absorbed into the result.
var ErrEmptyInput = errors.New("empty_input")

// Request is one extraction call.
type Request struct {
	Input string
	Query string
	TopK  int
}

// App runs the extraction pipeline. It holds no per-request state; one App
// serves concurrent requests.
type App struct {
	cfg      Config
	resolver *resolve.Resolver
	ranker   *rank.Ranker
}

func New(cfg Config) *App {
	hc := newHTTPClient(cfg.FetchTimeout)
	return &App{
		cfg: cfg,
		resolver: resolve.NewResolver(resolve.Options{
			HTTPClient:        hc,
			PerRequestTimeout: cfg.FetchTimeout,
			CurlBinary:        cfg.CurlBinary,
			VenvDir:           cfg.VenvDir,
			CFScript:          cfg.CFScript,
			Serverless:        cfg.Serverless,
		}),
		ranker: &rank.Ranker{
			Model:         cfg.EdgeModel,
			Endpoint:      cfg.EdgeURL,
			Timeout:       cfg.EdgeTimeout,
			HTTPClient:    hc,
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			OpenAIAPIKey:  cfg.OpenAIAPIKey,
			Serverless:    cfg.Serverless,
			ForceEdge:     cfg.ForceEdge,
		},
	}
}

// ExtractRelevantArticle resolves the input, extracts and ranks candidates,
// and composes the final passage set. It returns an error only when no
// content could be obtained at all; extraction ambiguity, ranking failures,
// and access blocks degrade into warning fields on the result.
func (a *App) ExtractRelevantArticle(ctx context.Context, req Request) (*ExtractionResult, error) {
	spec := resolve.Classify(req.Input)
	doc, err := a.resolver.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Body) == "" {
		return &ExtractionResult{OK: false, Error: ErrEmptyInput.Error()}, ErrEmptyInput
	}

	topK := clampTopK(req.TopK)
	if doc.SourceType == resolve.SourceText {
		return a.extractPlainText(ctx, req, doc, topK), nil
	}
	return a.extractMarkup(ctx, req, doc, topK), nil
}

func (a *App) extractPlainText(ctx context.Context, req Request, doc resolve.FetchedDocument, topK int) *ExtractionResult {
	text := textutil.NormalizeWhitespace(doc.Body)
	query := composeQuery(req.Query, "", "", textutil.Prefix(text, queryFromTextChars))
	paragraphs := textutil.SplitParagraphs(text)

	ranked := a.ranker.Rank(ctx, query, paragraphs, topK)
	passages := make([]Passage, 0, len(ranked.Ranked))
	for _, it := range ranked.Ranked {
		passages = append(passages, Passage{Score: it.Score, Text: it.Text})
	}

	return &ExtractionResult{
		OK:               true,
		SourceType:       doc.SourceType,
		Source:           doc.Source,
		ArticleText:      text,
		ParagraphCount:   len(paragraphs),
		RelevantPassages: passages,
		Ranking:          rankingInfo(ranked),
	}
}

func (a *App) extractMarkup(ctx context.Context, req Request, doc resolve.FetchedDocument, topK int) *ExtractionResult {
	baseURL := extract.LocalBaseURL
	if doc.SourceType == resolve.SourceURL {
		baseURL = doc.Source
	}
	ex := extract.FromHTML(doc.Body, baseURL)

	title := ex.Title
	var byline, excerpt string
	if ex.Doc != nil {
		if ex.Doc.Title != "" {
			title = ex.Doc.Title
		}
		byline = ex.Doc.Byline
		excerpt = ex.Doc.Excerpt
	}

	query := composeQuery(req.Query, title, excerpt, doc.Source)

	rankTopK := topK
	if rankTopK < minRankedCandidates {
		rankTopK = minRankedCandidates
	}
	ranked := a.ranker.Rank(ctx, query, ex.Candidates, rankTopK)

	articleText := ""
	if len(ranked.Ranked) > 0 {
		articleText = textutil.NormalizeWhitespace(ranked.Ranked[0].Text)
	} else if len(ex.Candidates) > 0 {
		articleText = textutil.NormalizeWhitespace(ex.Candidates[0])
	}

	passages := relevantPassages(articleText, ranked.Ranked, clamp(topK, minComposedPassages, maxComposedPassages))

	blocked := fetch.BlockedContent(title, articleText)
	warning := ""
	if blocked {
		log.Warn().Str("source", doc.Source).Msg("extracted content still reads as an access-block page")
		warning = blockWarning(a.cfg.Serverless)
	}

	return &ExtractionResult{
		OK:                 true,
		SourceType:         doc.SourceType,
		Source:             doc.Source,
		NormalizedSource:   doc.Source,
		Title:              title,
		Byline:             byline,
		Excerpt:            excerpt,
		ArticleText:        articleText,
		ParagraphCount:     len(textutil.SplitParagraphs(articleText)),
		RelevantPassages:   passages,
		CandidatesAnalyzed: len(ex.Candidates),
		Blocked:            blocked,
		Warning:            warning,
		Ranking:            rankingInfo(ranked),
	}
}

// relevantPassages maps ranked candidates back onto the article's own
// paragraphs by prefix containment. Containment can miss entirely when
// extraction methods disagree on boundaries; the document-order fallback is
// deliberate, not an error.
func relevantPassages(articleText string, ranked []rank.Item, maxPassages int) []Passage {
	paragraphs := textutil.SplitParagraphs(articleText)
	if len(paragraphs) == 0 {
		return []Passage{}
	}

	used := make(map[string]struct{})
	out := make([]Passage, 0, maxPassages)
	for _, row := range ranked {
		needle := textutil.Prefix(strings.TrimSpace(row.Text), passageNeedleChars)
		if needle == "" {
			continue
		}
		for _, p := range paragraphs {
			if !strings.Contains(p, needle) {
				continue
			}
			key := textutil.Prefix(p, passageDedupChars)
			if _, ok := used[key]; ok {
				continue
			}
			used[key] = struct{}{}
			out = append(out, Passage{Score: row.Score, Text: p})
			break
		}
		if len(out) >= maxPassages {
			break
		}
	}
	if len(out) > 0 {
		return out
	}

	n := maxPassages
	if n > len(paragraphs) {
		n = len(paragraphs)
	}
	out = make([]Passage, 0, n)
	for _, p := range paragraphs[:n] {
		out = append(out, Passage{Score: 0, Text: p})
	}
	return out
}

// composeQuery prefers the caller's explicit query, else joins whatever page
// metadata is available.
func composeQuery(explicit, title, excerpt, source string) string {
	if q := strings.TrimSpace(explicit); q != "" {
		return q
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{title, excerpt, source} {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func rankingInfo(r rank.Result) RankingInfo {
	return RankingInfo{Method: r.Method, Model: r.Model, Warning: r.Warning}
}

func blockWarning(serverless bool) string {
	if serverless {
		return "Remote site returned an anti-bot/access-block page. This host may block datacenter traffic; paste raw article HTML/text for full extraction."
	}
	return "Remote site returned an anti-bot/access-block page. Paste the raw article HTML/text to extract the real content."
}

func clampTopK(n int) int {
	if n == 0 {
		return DefaultTopK
	}
	return clamp(n, MinTopK, MaxTopK)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
