package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minParagraphChars is the shortest segment kept by SplitParagraphs. Shorter
// fragments are almost always navigation labels, captions, or stray markup.
const minParagraphChars = 40

var (
	reSpaceRuns   = regexp.MustCompile(`[ \t]+`)
	reNewlineRuns = regexp.MustCompile(`\n{3,}`)
	reParaBreak   = regexp.MustCompile(`\n{2,}`)
)

// NormalizeWhitespace strips carriage returns, collapses runs of spaces and
// tabs to a single space, collapses three or more newlines to exactly two,
// and trims the ends.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = reSpaceRuns.ReplaceAllString(s, " ")
	s = reNewlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// SplitParagraphs normalizes text and splits it on blank-line boundaries,
// discarding segments shorter than 40 characters. The result preserves
// document order.
func SplitParagraphs(s string) []string {
	parts := reParaBreak.Split(NormalizeWhitespace(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < minParagraphChars {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Prefix returns the first n characters of s, or s itself when shorter.
func Prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
