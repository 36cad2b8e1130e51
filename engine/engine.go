// Package engine wraps the external yt-dlp extraction/download engine.
// Two execution strategies exist: a direct subprocess invocation that
// captures the JSON dump, and an embedded call through go-ytdlp. Only
// the embedded strategy can stream progress callbacks, so downloads
// always use it; metadata lookups try the subprocess first and fall
// back to the embedded call.
package engine

import (
	"context"
	"strings"

	"github.com/renbkna/yt-dlp-ui/types"
)

// RawEvent mirrors the progress dictionary the engine emits while a
// download runs. Fields are best effort; any of them may be zero.
type RawEvent struct {
	Status             string
	Filename           string
	DownloadedBytes    float64
	TotalBytes         float64
	TotalBytesEstimate float64
	Percent            float64
	Speed              string
	ETA                string
	Ext                string
	PlaylistIndex      int
	PlaylistCount      int
	PlaylistTitle      string
	Message            string
}

// EventKind classifies a normalized progress event.
type EventKind int

const (
	KindDownloading EventKind = iota
	KindPlaylist
	KindFinished
	KindError
)

// Event is a normalized task status update derived from a RawEvent.
type Event struct {
	Kind              EventKind
	Progress          float64 // percent, 0-100
	Filename          string
	Speed             string
	ETA               string
	PlaylistIndex     int
	PlaylistCount     int
	PendingConversion bool
	Message           string
}

// LookupOptions configures a metadata or format lookup.
type LookupOptions struct {
	Playlist           bool
	CookieFile         string
	CookiesFromBrowser string
}

// MetadataRunner resolves the engine's JSON info dump for a URL.
type MetadataRunner interface {
	Name() string
	Extract(ctx context.Context, url string, opts LookupOptions) (map[string]any, error)
}

// Downloader runs one download to completion, streaming raw progress
// events through hook. A nil error means the engine finished without
// reporting a terminal failure.
type Downloader interface {
	Download(ctx context.Context, url string, opts *OptionsBundle, hook func(RawEvent)) error
}

var authPatterns = []string{
	"sign in to confirm",
	"confirm you're not a bot",
	"not a bot",
	"login required",
	"cookies",
}

// classifyError wraps an engine failure, flagging sign-in/bot gating so
// the API can distinguish it from a plain content error.
func classifyError(err error, cookiesAvailable bool) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, p := range authPatterns {
		if strings.Contains(lower, p) {
			return &types.EngineError{Msg: msg, AuthRequired: true, CookiesAvailable: cookiesAvailable}
		}
	}
	return &types.EngineError{Msg: msg, CookiesAvailable: cookiesAvailable}
}
