package engine

import (
	"path/filepath"

	"github.com/renbkna/yt-dlp-ui/types"
)

// Transfer retry policy handed to the engine on every download. Set
// explicitly so behavior never depends on the engine's own defaults.
const (
	downloadRetries = 10
	retrySleep      = "exp=1:120" // exponential backoff, 1s base
)

// defaultHeaders mimic a desktop browser client; some extractors refuse
// bare library user agents.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/95.0.4638.69 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.5",
	"Referer":         "https://www.youtube.com/",
}

// OptionsBundle is the engine configuration for one invocation. Built
// once per download and never mutated after construction, except that
// the invoker fills CookieFile/CookiesFromBrowser when a credential
// source applies.
type OptionsBundle struct {
	Format             string
	OutputTemplate     string
	ExtractAudio       bool
	AudioFormat        string
	AudioQuality       string
	EmbedMetadata      bool
	EmbedThumbnail     bool
	WriteSubtitles     bool
	SubtitleLangs      []string
	Playlist           bool
	Sponsorblock       bool
	CookieFile         string
	CookiesFromBrowser string
	Retries            int
	FragmentRetries    int
	RetrySleep         string
	RequestedExt       string
	HTTPHeaders        map[string]string
}

// BuildOptions derives the engine configuration from a request and the
// task id namespacing the output path. Deterministic given its inputs.
func BuildOptions(req types.DownloadRequest, taskID, downloadDir string) *OptionsBundle {
	format := req.Format
	if req.ExtractAudio && (format == "" || format == "best") {
		format = "bestaudio"
	}

	opts := &OptionsBundle{
		Format:          format,
		OutputTemplate:  filepath.Join(downloadDir, taskID, "%(title)s.%(ext)s"),
		ExtractAudio:    req.ExtractAudio,
		AudioFormat:     req.AudioFormat,
		AudioQuality:    req.Quality,
		EmbedMetadata:   req.EmbedMetadata,
		EmbedThumbnail:  req.EmbedThumbnail,
		WriteSubtitles:  req.DownloadSubtitles,
		SubtitleLangs:   req.SubtitleLanguages,
		Playlist:        req.DownloadPlaylist,
		Sponsorblock:    req.Sponsorblock,
		Retries:         downloadRetries,
		FragmentRetries: downloadRetries,
		RetrySleep:      retrySleep,
		HTTPHeaders:     defaultHeaders,
	}

	// A pending audio conversion is detected by comparing the finished
	// file's extension against the requested codec.
	if req.ExtractAudio && req.AudioFormat != "" {
		opts.RequestedExt = req.AudioFormat
	}

	return opts
}
