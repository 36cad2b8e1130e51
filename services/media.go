package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/types"
)

// maxEntries caps the playlist entries returned by info and format
// lookups.
const maxEntries = 50

// premiumKeywords in a format's quality note mark it as a high-tier
// encoding that typically needs an account.
var premiumKeywords = []string{"premium", "4320p", "8k", "dolby", "hdr"}

// strippedParams are tracking parameters removed from every URL before
// it reaches the engine; "list" is also removed unless the caller asked
// for the playlist.
var strippedParams = []string{"feature", "ab_channel", "si", "pp"}

// Extractor resolves the engine's info dump for a URL. Satisfied by
// engine.StrategyChain.
type Extractor interface {
	Extract(ctx context.Context, url string, opts engine.LookupOptions) (map[string]any, error)
}

// MediaService answers synchronous metadata and format lookups. Both
// run under a bounded timeout since the caller blocks on them.
type MediaService struct {
	extractor Extractor
	cookies   *CookieStore
	browser   string
	timeout   time.Duration
}

// NewMediaService wires a media lookup service.
func NewMediaService(extractor Extractor, cookies *CookieStore, browser string, timeout time.Duration) *MediaService {
	return &MediaService{extractor: extractor, cookies: cookies, browser: browser, timeout: timeout}
}

// GetInfo fetches the metadata record for a URL.
func (s *MediaService) GetInfo(ctx context.Context, rawURL string, isPlaylist bool, clientCookies []types.Cookie) (*types.VideoInfo, error) {
	info, err := s.extract(ctx, rawURL, isPlaylist, clientCookies)
	if err != nil {
		if degraded, ok := degradedInfo(rawURL); ok {
			return degraded, nil
		}
		return nil, err
	}

	out := &types.VideoInfo{
		Title:       getString(info, "title"),
		Duration:    getFloat(info, "duration"),
		Thumbnail:   getString(info, "thumbnail"),
		Description: getString(info, "description"),
		Uploader:    getString(info, "uploader"),
		ViewCount:   int64(getFloat(info, "view_count")),
		UploadDate:  getString(info, "upload_date"),
	}
	if entries, ok := info["entries"].([]any); ok {
		out.IsPlaylist = true
		out.Entries = capEntries(entries)
	}
	return out, nil
}

// GetFormats fetches and enriches the format listing for a URL.
func (s *MediaService) GetFormats(ctx context.Context, rawURL string, isPlaylist bool, clientCookies []types.Cookie) (*types.FormatsInfo, error) {
	info, err := s.extract(ctx, rawURL, isPlaylist, clientCookies)
	if err != nil {
		return nil, err
	}

	out := &types.FormatsInfo{}
	duration := getFloat(info, "duration")
	if formats, ok := info["formats"].([]any); ok {
		for _, f := range formats {
			m, ok := f.(map[string]any)
			if !ok {
				continue
			}
			out.Formats = append(out.Formats, EnrichFormat(m, duration))
		}
	}
	if entries, ok := info["entries"].([]any); ok {
		out.IsPlaylist = true
		out.Entries = capEntries(entries)
	}
	return out, nil
}

// extract sanitizes the URL, injects at most one credential source
// (client bundle first, then browser jar) and runs the strategy chain
// under the lookup timeout. A materialized artifact is always released
// before returning.
func (s *MediaService) extract(ctx context.Context, rawURL string, isPlaylist bool, clientCookies []types.Cookie) (map[string]any, error) {
	clean, err := SanitizeURL(rawURL, isPlaylist)
	if err != nil {
		return nil, types.NewValidationError("invalid url: %v", err)
	}

	opts := engine.LookupOptions{Playlist: isPlaylist}
	if len(clientCookies) > 0 {
		artifact, err := s.cookies.Materialize(types.CookieBundle{Cookies: clientCookies})
		if err != nil {
			return nil, err
		}
		defer s.cookies.Release(artifact)
		opts.CookieFile = artifact
	} else if s.browser != "" {
		opts.CookiesFromBrowser = s.browser
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.extractor.Extract(ctx, clean, opts)
}

// SanitizeURL strips tracking parameters, and the playlist parameter
// when a single video was requested.
func SanitizeURL(rawURL string, isPlaylist bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host")
	}

	q := u.Query()
	for _, p := range strippedParams {
		q.Del(p)
	}
	if !isPlaylist {
		q.Del("list")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// EnrichFormat fills the derived fields of one raw format record:
// width/height from a "WxH" resolution string, an estimated filesize
// from bitrate and duration, and the premium flag from quality-note
// keywords.
func EnrichFormat(m map[string]any, duration float64) types.FormatEntry {
	entry := types.FormatEntry{
		FormatID:   getString(m, "format_id"),
		Ext:        getString(m, "ext"),
		FormatNote: getString(m, "format_note"),
		VCodec:     getString(m, "vcodec"),
		ACodec:     getString(m, "acodec"),
		Width:      int(getFloat(m, "width")),
		Height:     int(getFloat(m, "height")),
		Resolution: getString(m, "resolution"),
		TBR:        getFloat(m, "tbr"),
		Filesize:   int64(getFloat(m, "filesize")),
	}

	if entry.Width == 0 && entry.Height == 0 && entry.Resolution != "" {
		if w, h, ok := parseResolution(entry.Resolution); ok {
			entry.Width, entry.Height = w, h
		}
	}

	if entry.Filesize == 0 {
		if approx := getFloat(m, "filesize_approx"); approx > 0 {
			entry.Filesize = int64(approx)
		} else if entry.TBR > 0 && duration > 0 {
			// tbr is in kbit/s
			entry.Filesize = int64(entry.TBR * 1024 / 8 * duration)
		}
	}

	note := strings.ToLower(entry.FormatNote)
	for _, kw := range premiumKeywords {
		if strings.Contains(note, kw) {
			entry.IsPremium = true
			break
		}
	}
	return entry
}

func parseResolution(s string) (int, int, bool) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// shortFormHosts are platforms without full extraction support; a
// failed lookup for them degrades to a minimal best-effort record
// instead of an error.
var shortFormHosts = []string{"tiktok.com", "douyin.com"}

// degradedInfo builds the minimal metadata record for a short-form
// platform URL, inferring a title from the URL path.
func degradedInfo(rawURL string) (*types.VideoInfo, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	matched := false
	for _, h := range shortFormHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, false
	}

	title := "Video from " + host
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		title = strings.ReplaceAll(last, "-", " ")
	}
	return &types.VideoInfo{Title: title}, true
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func capEntries(entries []any) []map[string]any {
	out := make([]map[string]any, 0, maxEntries)
	for _, e := range entries {
		if len(out) == maxEntries {
			break
		}
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
