package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// CurlRunner is the second fetch tier. curl tolerates TLS setups and
// anti-bot quirks that trip the Go HTTP client on some hosts.
type CurlRunner struct {
	// Binary defaults to "curl" on PATH.
	Binary string
	// MaxTime bounds curl's total transfer time. Defaults to 40s.
	MaxTime   time.Duration
	UserAgent string
}

func (r *CurlRunner) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "curl"
	}
	maxTime := r.MaxTime
	if maxTime <= 0 {
		maxTime = 40 * time.Second
	}
	ua := r.UserAgent
	if ua == "" {
		ua = BrowserUA
	}

	ctx, cancel := context.WithTimeout(ctx, maxTime+5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"-L",
		"--compressed",
		"--max-time", strconv.Itoa(int(maxTime.Seconds())),
		"-A", ua,
		rawURL,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("curl: %w", err)
	}
	body := stdout.Bytes()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("curl: empty body")
	}
	return body, nil
}
