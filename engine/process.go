package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// ProcessRunner invokes the yt-dlp binary directly and captures its
// single-line JSON dump. It is the first metadata strategy: cheap and
// isolated, but it cannot stream progress.
type ProcessRunner struct {
	bin string
}

// NewProcessRunner returns a runner for the given yt-dlp binary path.
// An empty path falls back to resolving "yt-dlp" on PATH.
func NewProcessRunner(bin string) *ProcessRunner {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &ProcessRunner{bin: bin}
}

func (r *ProcessRunner) Name() string { return "process" }

// Extract runs `yt-dlp -J` and unmarshals the info dump.
func (r *ProcessRunner) Extract(ctx context.Context, url string, opts LookupOptions) (map[string]any, error) {
	args := []string{"-J", "--no-warnings", "--skip-download"}
	if opts.Playlist {
		args = append(args, "--yes-playlist", "--flat-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	} else if opts.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", opts.CookiesFromBrowser)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp process failed: %s", lastLine(detail))
	}

	var info map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp process output: %w", err)
	}
	return info, nil
}

// lastLine keeps the final stderr line; yt-dlp puts the actual error
// there, after pages of extractor noise.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return s
}
