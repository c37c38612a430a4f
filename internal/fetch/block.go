package fetch

import "strings"

// LooksLikeAccessBlock reports whether a fetched page reads like a
// bot-challenge or access-denial interstitial. Fixed substring checks on
// purpose: this is a best-effort signal that only gates escalation and the
// blocked/warning result fields, never a hard failure.
func LooksLikeAccessBlock(html string) bool {
	s := strings.ToLower(html)
	if s == "" {
		return false
	}
	if strings.Contains(s, "attention required") && strings.Contains(s, "cloudflare") {
		return true
	}
	if strings.Contains(s, "just a moment...") && strings.Contains(s, "cloudflare") {
		return true
	}
	if strings.Contains(s, "why have i been blocked") {
		return true
	}
	if strings.Contains(s, "enable javascript and cookies") {
		return true
	}
	return false
}

// BlockedContent applies the block heuristic at the content level. A blocked
// page can still parse into a short plausible "article", so the composed
// title and text are re-checked after extraction.
func BlockedContent(title, text string) bool {
	t := strings.ToLower(title)
	b := strings.ToLower(text)
	if strings.Contains(t, "attention required") && strings.Contains(b, "cloudflare") {
		return true
	}
	if strings.Contains(b, "why have i been blocked") && strings.Contains(b, "security service") {
		return true
	}
	if strings.Contains(b, "enable javascript and cookies") {
		return true
	}
	return false
}
