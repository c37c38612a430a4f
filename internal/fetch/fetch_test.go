package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientGet_Success(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	body, ct, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) == 0 || ct == "" {
		t.Fatalf("expected body and content type")
	}
	if gotUA != BrowserUA {
		t.Fatalf("expected browser UA, got %q", gotUA)
	}
	if gotAccept != AcceptHTML {
		t.Fatalf("expected HTML accept header, got %q", gotAccept)
	}
}

func TestClientGet_NonSuccessStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 403")
	}
}

func TestClientGet_RejectsNonHTTPScheme(t *testing.T) {
	c := &Client{PerRequestTimeout: time.Second}
	if _, _, err := c.Get(context.Background(), "file:///etc/hosts"); err == nil {
		t.Fatalf("expected error for file scheme")
	}
}

func tierOK(name string, body string) Tier {
	return Tier{
		Name:      name,
		ShouldRun: func(b []byte, err error) bool { return b == nil },
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return []byte(body), nil
		},
	}
}

func tierFail(name string) Tier {
	return Tier{
		Name:      name,
		ShouldRun: func(b []byte, err error) bool { return b == nil },
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return nil, errors.New(name + " failed")
		},
	}
}

func TestChain_FirstTierWins(t *testing.T) {
	var secondRan bool
	second := Tier{
		Name:      "second",
		ShouldRun: func(b []byte, err error) bool { return b == nil && err != nil },
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			secondRan = true
			return []byte("second"), nil
		},
	}
	c := &Chain{Tiers: []Tier{tierOK("first", "first"), second}}
	body, err := c.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "first" || secondRan {
		t.Fatalf("second tier should not run after success")
	}
}

func TestChain_EscalatesOnFailure(t *testing.T) {
	second := Tier{
		Name:      "second",
		ShouldRun: func(b []byte, err error) bool { return b == nil && err != nil },
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return []byte("second"), nil
		},
	}
	c := &Chain{Tiers: []Tier{tierFail("first"), second}}
	body, err := c.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "second" {
		t.Fatalf("expected second-tier body, got %q", body)
	}
}

func TestChain_AllTiersFail(t *testing.T) {
	second := Tier{
		Name:      "second",
		ShouldRun: func(b []byte, err error) bool { return b == nil && err != nil },
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return nil, errors.New("second failed")
		},
	}
	c := &Chain{Tiers: []Tier{tierFail("first"), second}}
	_, err := c.Fetch(context.Background(), "https://example.com/a")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.URL != "https://example.com/a" {
		t.Fatalf("unexpected URL on error: %q", fe.URL)
	}
}

func TestChain_BlockedBodyKeptWhenEscalationFails(t *testing.T) {
	blocked := "<html>Enable JavaScript and cookies to continue</html>"
	unblock := Tier{
		Name: "challenge",
		ShouldRun: func(b []byte, err error) bool {
			return b != nil && LooksLikeAccessBlock(string(b))
		},
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return nil, errors.New("challenge solver unavailable")
		},
	}
	c := &Chain{Tiers: []Tier{tierOK("direct", blocked), unblock}}
	body, err := c.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("blocked body must be kept, got error %v", err)
	}
	if string(body) != blocked {
		t.Fatalf("expected original blocked body, got %q", body)
	}
}

func TestChain_BlockedBodyReplacedOnEscalationSuccess(t *testing.T) {
	blocked := "<html>Why have I been blocked?</html>"
	unblock := Tier{
		Name: "challenge",
		ShouldRun: func(b []byte, err error) bool {
			return b != nil && LooksLikeAccessBlock(string(b))
		},
		Attempt: func(ctx context.Context, rawURL string) ([]byte, error) {
			return []byte("<html>real article</html>"), nil
		},
	}
	c := &Chain{Tiers: []Tier{tierOK("direct", blocked), unblock}}
	body, err := c.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>real article</html>" {
		t.Fatalf("expected replaced body, got %q", body)
	}
}

func TestLooksLikeAccessBlock(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"<html>Attention Required! | Cloudflare</html>", true},
		{"<title>Just a moment...</title> cloudflare challenge", true},
		{"Why have I been blocked?", true},
		{"Please enable JavaScript and cookies to continue", true},
		{"<html>a perfectly normal article about gardens</html>", false},
		{"attention required but no vendor marker", false},
	}
	for _, tc := range cases {
		if got := LooksLikeAccessBlock(tc.in); got != tc.want {
			t.Fatalf("LooksLikeAccessBlock(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBlockedContent(t *testing.T) {
	if !BlockedContent("Attention Required!", "checking cloudflare security") {
		t.Fatalf("expected blocked for challenge title")
	}
	if !BlockedContent("", "why have i been blocked by this security service") {
		t.Fatalf("expected blocked for security-service body")
	}
	if BlockedContent("Gardening Weekly", "how to plant tomatoes") {
		t.Fatalf("unexpected block for normal content")
	}
}
