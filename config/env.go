package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GetDownloadDir returns the root directory task output is written to.
func GetDownloadDir() string {
	if dir := os.Getenv("YTDLP_UI_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(".", "downloads")
}

// GetDataDir returns the directory holding the history database.
func GetDataDir() string {
	if dir := os.Getenv("YTDLP_UI_DATA_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(".", "data")
}

// GetCookieDir returns the directory for ephemeral cookie artifacts.
func GetCookieDir() string {
	if dir := os.Getenv("YTDLP_UI_COOKIE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "yt-dlp-ui-cookies")
}

// GetCookieExpiry returns the age after which a stale cookie artifact
// is swept. Artifacts normally live only for one engine invocation;
// the sweep only matters after a crash.
func GetCookieExpiry() time.Duration {
	if v := os.Getenv("YTDLP_UI_COOKIE_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return time.Hour
}

// GetWorkerCount returns the download worker pool size.
func GetWorkerCount() int {
	if v := os.Getenv("YTDLP_UI_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 3
}

// GetLookupTimeout bounds synchronous metadata and format lookups.
func GetLookupTimeout() time.Duration {
	if v := os.Getenv("YTDLP_UI_LOOKUP_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 45 * time.Second
}

// GetBrowser names the local browser whose cookie jar the engine may
// read when a request opts into browser cookies. Empty disables the
// browser source.
func GetBrowser() string {
	return os.Getenv("YTDLP_UI_COOKIES_FROM_BROWSER")
}

// GetYtdlpBin returns an explicit yt-dlp binary path, or empty to
// resolve from PATH.
func GetYtdlpBin() string {
	return os.Getenv("YTDLP_UI_YTDLP_BIN")
}

// GetCORSOrigins returns the comma-separated allowed origins; "*"
// allows all.
func GetCORSOrigins() string {
	if origins := os.Getenv("YTDLP_UI_CORS_ORIGINS"); origins != "" {
		return origins
	}
	return "*"
}
