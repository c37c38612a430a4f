// Package extract turns an HTML document into a deduplicated, priority-ordered
// list of plausible main-content candidates, combining a structural reading
// view with heuristic content-region selectors.
package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/articlereader/articlereader/internal/textutil"
)

// LocalBaseURL anchors relative links when the document did not come from a
// real URL.
const LocalBaseURL = "https://local.article.reader/"

const (
	// minCandidateChars rejects fragments too short to be an article body.
	minCandidateChars = 350
	maxRawCandidates  = 30
	dedupPrefixChars  = 240
)

// candidateSelectors is evaluated in priority order: semantic containers
// first, then ARIA/microdata markers, then common CMS class and id patterns.
var candidateSelectors = []string{
	"article",
	"[itemprop='articleBody']",
	"main article",
	"main",
	".article-body",
	".article-content",
	".story-body",
	".post-content",
	".entry-content",
	"#article-body",
	"#content",
}

// Document is the structural reading view of a page.
type Document struct {
	Title   string
	Byline  string
	Excerpt string
	Text    string
}

// Extraction is the combined output for one HTML document.
type Extraction struct {
	// Doc is the structural reading view, nil when parsing failed or the
	// text was too short to trust.
	Doc *Document
	// Title is the page-level fallback title (first h1, else <title>).
	Title string
	// Candidates is deduplicated and ordered by extraction-method priority:
	// the structural result first, then selector matches.
	Candidates []string
}

// FromHTML produces the full extraction for one document. The candidate list
// is never empty for non-empty input: when nothing survives the length and
// dedup filters, the normalized full-body text stands in.
func FromHTML(src, baseURL string) Extraction {
	ex := Extraction{Doc: Readable(src, baseURL)}

	gq, gqErr := goquery.NewDocumentFromReader(strings.NewReader(src))
	if gqErr == nil {
		ex.Title = pageTitle(gq)
	}

	raw := make([]string, 0, maxRawCandidates+1)
	if ex.Doc != nil {
		raw = append(raw, ex.Doc.Text)
	}
	if gqErr == nil {
		raw = append(raw, SelectorCandidates(gq)...)
	}

	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		key := textutil.Prefix(c, dedupPrefixChars)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ex.Candidates = append(ex.Candidates, c)
	}

	if len(ex.Candidates) == 0 {
		ex.Candidates = append(ex.Candidates, BodyText(src))
	}
	return ex
}

// Readable runs the structural extraction capability. It returns nil when the
// document does not parse into a reading view or the text falls under the
// candidate threshold.
func Readable(src, baseURL string) *Document {
	u, err := url.Parse(baseURL)
	if err != nil || u == nil || u.Scheme == "" {
		u, _ = url.Parse(LocalBaseURL)
	}
	art, err := readability.FromReader(strings.NewReader(src), u)
	if err != nil {
		return nil
	}
	text := textutil.NormalizeWhitespace(art.TextContent)
	if utf8.RuneCountInString(text) < minCandidateChars {
		return nil
	}
	return &Document{
		Title:   textutil.NormalizeWhitespace(art.Title),
		Byline:  textutil.NormalizeWhitespace(art.Byline),
		Excerpt: textutil.NormalizeWhitespace(art.Excerpt),
		Text:    text,
	}
}

// SelectorCandidates evaluates the fixed selector list against the document
// and keeps normalized region texts of at least 350 characters, stopping at
// 30 raw candidates. Duplicates are dropped by prefix fingerprint, first
// occurrence wins.
func SelectorCandidates(doc *goquery.Document) []string {
	out := make([]string, 0, 8)
	seen := make(map[string]struct{})
	for _, sel := range candidateSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := textutil.NormalizeWhitespace(s.Text())
			if utf8.RuneCountInString(text) < minCandidateChars {
				return true
			}
			key := textutil.Prefix(text, dedupPrefixChars)
			if _, ok := seen[key]; ok {
				return true
			}
			seen[key] = struct{}{}
			out = append(out, text)
			return len(out) < maxRawCandidates
		})
		if len(out) >= maxRawCandidates {
			break
		}
	}
	return out
}

func pageTitle(doc *goquery.Document) string {
	if h1 := textutil.NormalizeWhitespace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return textutil.NormalizeWhitespace(doc.Find("title").First().Text())
}
