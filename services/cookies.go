package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renbkna/yt-dlp-ui/types"
)

// CookieStore materializes caller-supplied cookie bundles into
// ephemeral jar files in the interchange format the engine expects.
// An artifact belongs to exactly one invocation: it is created right
// before the engine call and released unconditionally when the call
// ends. SweepExpired is the safety net for crashes that skip release.
type CookieStore struct {
	dir    string
	expiry time.Duration
}

// NewCookieStore returns a store writing artifacts under dir, sweeping
// anything older than expiry.
func NewCookieStore(dir string, expiry time.Duration) (*CookieStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cookie store: %w", err)
	}
	return &CookieStore{dir: dir, expiry: expiry}, nil
}

// Materialize validates the bundle and writes it to a fresh jar file,
// returning the artifact path. The caller owns the artifact and must
// Release it on every exit path.
func (s *CookieStore) Materialize(bundle types.CookieBundle) (string, error) {
	if len(bundle.Cookies) == 0 {
		return "", types.NewValidationError("cookie bundle is empty")
	}

	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for i, c := range bundle.Cookies {
		line, err := jarLine(c)
		if err != nil {
			return "", types.NewValidationError("cookie %d: %v", i, err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	path := filepath.Join(s.dir, uuid.New().String()+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("cookie store: write artifact: %w", err)
	}
	return path, nil
}

// Release deletes an artifact. Safe to call more than once; deletion
// failures are logged, never raised, since the sweep will catch them.
func (s *CookieStore) Release(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("cookie store: release %s: %v", path, err)
	}
}

// SweepExpired deletes artifacts whose modification time precedes the
// expiry window, returning the number removed. Artifact names are
// unique per invocation so concurrent materialize/release calls are
// safe during a sweep.
func (s *CookieStore) SweepExpired() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("cookie store: sweep: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-s.expiry)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
				log.Printf("cookie store: sweep %s: %v", e.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed
}

// StartSweeper runs SweepExpired once immediately and then on a timer.
func (s *CookieStore) StartSweeper(interval time.Duration) {
	s.SweepExpired()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if n := s.SweepExpired(); n > 0 {
				log.Printf("cookie store: swept %d expired artifacts", n)
			}
		}
	}()
}

// jarLine renders one cookie as a Netscape jar line:
// domain, subdomain flag, path, secure flag, expiry, name, value.
func jarLine(c types.Cookie) (string, error) {
	if strings.TrimSpace(c.Domain) == "" {
		return "", fmt.Errorf("missing domain")
	}
	if strings.TrimSpace(c.Name) == "" {
		return "", fmt.Errorf("missing name")
	}
	for _, field := range []string{c.Domain, c.Name, c.Value, c.Path} {
		if strings.ContainsAny(field, "\t\n\r") {
			return "", fmt.Errorf("field contains forbidden characters")
		}
	}
	if strings.ContainsAny(c.Domain, " /\\") || !strings.Contains(c.Domain, ".") {
		return "", fmt.Errorf("malformed domain %q", c.Domain)
	}

	domain := c.Domain
	if !strings.HasPrefix(domain, ".") {
		domain = "." + domain
	}
	path := c.Path
	if path == "" {
		path = "/"
	}

	return strings.Join([]string{
		domain,
		"TRUE",
		path,
		jarBool(c.Secure),
		fmt.Sprintf("%d", c.Expires),
		c.Name,
		c.Value,
	}, "\t"), nil
}

func jarBool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
