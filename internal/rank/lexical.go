package rank

import (
	"regexp"
	"strings"
)

var reNonWord = regexp.MustCompile(`[^a-z0-9_]+`)

func tokenize(s string) []string {
	parts := reNonWord.Split(strings.ToLower(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// TermFrequencyScore is the deterministic fallback scorer: for each query
// token, count text tokens that start with it, normalized by text length.
// No IDF weighting and no external calls.
func TermFrequencyScore(query, text string) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	var score float64
	for _, qt := range qTokens {
		for w, c := range counts {
			if strings.HasPrefix(w, qt) {
				score += float64(c)
			}
		}
	}
	return score / float64(len(words))
}
