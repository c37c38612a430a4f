package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Tier is one attempt in the escalating fetch chain. ShouldRun inspects the
// outcome so far: the body obtained by an earlier tier (nil if none) and the
// pending error (nil once a body exists). Keeping the tier order and guards
// in data makes the escalation auditable and testable in isolation.
type Tier struct {
	Name      string
	ShouldRun func(body []byte, err error) bool
	Attempt   func(ctx context.Context, rawURL string) ([]byte, error)
}

// FetchError reports that every applicable tier failed to produce content.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// Chain runs tiers in order. A tier that fails after a body was already
// obtained never discards that body: escalation tiers are best-effort
// replacements, not gates.
type Chain struct {
	Tiers []Tier
}

func (c *Chain) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	var lastErr error
	for _, t := range c.Tiers {
		if t.ShouldRun != nil && !t.ShouldRun(body, lastErr) {
			continue
		}
		b, err := t.Attempt(ctx, rawURL)
		if err != nil {
			log.Debug().Err(err).Str("tier", t.Name).Str("url", rawURL).Msg("fetch tier failed")
			if body == nil {
				lastErr = err
			}
			continue
		}
		body, lastErr = b, nil
	}
	if body == nil {
		if lastErr == nil {
			lastErr = errors.New("no fetch tier ran")
		}
		return nil, &FetchError{URL: rawURL, Err: lastErr}
	}
	return body, nil
}
