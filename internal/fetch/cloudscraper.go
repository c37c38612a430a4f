package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Cloudscraper is the last fetch tier: a Python helper that can pass
// Cloudflare-style browser challenges. The interpreter environment is
// provisioned lazily on first use. Provisioning is check-then-create and
// tolerates concurrent redundant creation.
type Cloudscraper struct {
	// VenvDir is the isolated interpreter environment. Defaults to ".venv_cf".
	VenvDir string
	// ScriptPath is the fetch helper script. Defaults to scripts/cf_fetch.py.
	ScriptPath string
	// Python is the interpreter used to create the venv. Defaults to "python3".
	Python string
}

const (
	venvCreateTimeout  = 2 * time.Minute
	importCheckTimeout = 15 * time.Second
	pipInstallTimeout  = 3 * time.Minute
	cfFetchTimeout     = 90 * time.Second
)

func (c *Cloudscraper) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.ensureEnv(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfFetchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.pythonBin(), c.script(), rawURL)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cloudscraper fetch: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	body := stdout.Bytes()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("cloudscraper: empty body")
	}
	return body, nil
}

// ensureEnv creates the venv and installs cloudscraper if either is missing.
// Each step carries its own deadline so a wedged interpreter cannot hang the
// request.
func (c *Cloudscraper) ensureEnv(ctx context.Context) error {
	py := c.pythonBin()
	if _, err := os.Stat(py); err != nil {
		cctx, cancel := context.WithTimeout(ctx, venvCreateTimeout)
		defer cancel()
		interp := c.Python
		if interp == "" {
			interp = "python3"
		}
		if out, err := exec.CommandContext(cctx, interp, "-m", "venv", c.venvDir()).CombinedOutput(); err != nil {
			return fmt.Errorf("create venv: %w (%s)", err, bytes.TrimSpace(out))
		}
	}

	ictx, cancel := context.WithTimeout(ctx, importCheckTimeout)
	defer cancel()
	if err := exec.CommandContext(ictx, py, "-c", "import cloudscraper").Run(); err != nil {
		pctx, cancel := context.WithTimeout(ctx, pipInstallTimeout)
		defer cancel()
		if out, err := exec.CommandContext(pctx, py, "-m", "pip", "install", "-q", "cloudscraper").CombinedOutput(); err != nil {
			return fmt.Errorf("install cloudscraper: %w (%s)", err, bytes.TrimSpace(out))
		}
	}
	return nil
}

func (c *Cloudscraper) venvDir() string {
	if c.VenvDir != "" {
		return c.VenvDir
	}
	return ".venv_cf"
}

func (c *Cloudscraper) pythonBin() string {
	return filepath.Join(c.venvDir(), "bin", "python")
}

func (c *Cloudscraper) script() string {
	if c.ScriptPath != "" {
		return c.ScriptPath
	}
	return filepath.Join("scripts", "cf_fetch.py")
}
