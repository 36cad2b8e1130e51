package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// LibraryRunner drives the engine through go-ytdlp's embedded command
// interface. It is the metadata fallback strategy and the only
// strategy used for downloads, since it can stream ProgressFunc
// callbacks.
type LibraryRunner struct {
	progressInterval time.Duration
}

// NewLibraryRunner returns a runner with the default progress interval.
func NewLibraryRunner() *LibraryRunner {
	return &LibraryRunner{progressInterval: 500 * time.Millisecond}
}

func (r *LibraryRunner) Name() string { return "library" }

// Extract resolves the info dump through an embedded call.
func (r *LibraryRunner) Extract(ctx context.Context, url string, opts LookupOptions) (map[string]any, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoWarnings()

	if opts.Playlist {
		dl = dl.YesPlaylist().FlatPlaylist()
	} else {
		dl = dl.NoPlaylist()
	}
	if opts.CookieFile != "" {
		dl = dl.Cookies(opts.CookieFile)
	} else if opts.CookiesFromBrowser != "" {
		dl = dl.CookiesFromBrowser(opts.CookiesFromBrowser)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp library call failed: %w", err)
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp library output: %w", err)
	}
	return info, nil
}

// Download runs one download with the given options, forwarding raw
// progress events to hook.
func (r *LibraryRunner) Download(ctx context.Context, url string, opts *OptionsBundle, hook func(RawEvent)) error {
	dl := ytdlp.New().
		Output(opts.OutputTemplate).
		Retries(strconv.Itoa(opts.Retries)).
		FragmentRetries(strconv.Itoa(opts.FragmentRetries)).
		RetrySleep(opts.RetrySleep).
		HLSUseMPEGTS().
		NoWarnings()

	if opts.Format != "" {
		dl = dl.Format(opts.Format)
	}
	if opts.Playlist {
		dl = dl.YesPlaylist()
	} else {
		dl = dl.NoPlaylist()
	}
	if opts.ExtractAudio {
		dl = dl.ExtractAudio()
		if opts.AudioFormat != "" {
			dl = dl.AudioFormat(opts.AudioFormat)
		}
		if opts.AudioQuality != "" {
			dl = dl.AudioQuality(opts.AudioQuality)
		}
	}
	if opts.EmbedMetadata {
		dl = dl.EmbedMetadata()
	}
	if opts.EmbedThumbnail {
		dl = dl.EmbedThumbnail()
	}
	if opts.WriteSubtitles {
		dl = dl.WriteSubs()
		if len(opts.SubtitleLangs) > 0 {
			dl = dl.SubLangs(strings.Join(opts.SubtitleLangs, ","))
		}
	}
	if opts.Sponsorblock {
		dl = dl.SponsorblockRemove("all")
	}
	if opts.CookieFile != "" {
		dl = dl.Cookies(opts.CookieFile)
	} else if opts.CookiesFromBrowser != "" {
		dl = dl.CookiesFromBrowser(opts.CookiesFromBrowser)
	}
	for field, value := range opts.HTTPHeaders {
		dl = dl.AddHeaders(field + ":" + value)
	}

	if hook != nil {
		dl.ProgressFunc(r.progressInterval, func(update ytdlp.ProgressUpdate) {
			hook(rawFromUpdate(update))
		})
	}

	if _, err := dl.Run(ctx, url); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyError(err, opts.CookieFile != "" || opts.CookiesFromBrowser != "")
	}
	return nil
}

// rawFromUpdate maps a go-ytdlp progress update onto the raw event
// shape consumed by the translator.
func rawFromUpdate(u ytdlp.ProgressUpdate) RawEvent {
	ev := RawEvent{
		Status:          string(u.Status),
		Filename:        u.Filename,
		DownloadedBytes: float64(u.DownloadedBytes),
		TotalBytes:      float64(u.TotalBytes),
	}

	if eta := u.ETA(); eta > 0 {
		ev.ETA = eta.Round(time.Second).String()
	}
	if !u.Started.IsZero() {
		if elapsed := time.Since(u.Started); elapsed.Seconds() > 0 && u.DownloadedBytes > 0 {
			ev.Speed = fmt.Sprintf("%.1fMB/s", float64(u.DownloadedBytes)/elapsed.Seconds()/1024/1024)
		}
	}
	if u.Info != nil {
		if u.Info.Extension != "" {
			ev.Ext = u.Info.Extension
		}
		if ev.Filename == "" && u.Info.Filename != nil {
			ev.Filename = *u.Info.Filename
		}
		if u.Info.PlaylistIndex != nil && u.Info.PlaylistCount != nil {
			ev.PlaylistIndex = int(*u.Info.PlaylistIndex)
			ev.PlaylistCount = int(*u.Info.PlaylistCount)
			if u.Info.PlaylistTitle != nil {
				ev.PlaylistTitle = *u.Info.PlaylistTitle
			}
		}
	}
	return ev
}
