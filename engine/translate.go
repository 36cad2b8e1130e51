package engine

import (
	"path/filepath"
	"strings"
)

// Translate normalizes a raw engine event into a task status update.
// The second return value is false for events the registry should
// ignore. Translation never fails: missing or inconsistent fields
// degrade to a zero progress value so a noisy progress stream cannot
// abort a download.
func Translate(ev RawEvent, requestedExt string) (Event, bool) {
	switch ev.Status {
	case "downloading":
		if ev.PlaylistCount > 0 {
			label := ev.PlaylistTitle
			if label != "" {
				label = "Playlist: " + label
			}
			return Event{
				Kind:          KindPlaylist,
				Progress:      playlistFraction(ev.PlaylistIndex, ev.PlaylistCount),
				Filename:      label,
				PlaylistIndex: ev.PlaylistIndex,
				PlaylistCount: ev.PlaylistCount,
			}, true
		}
		return Event{
			Kind:     KindDownloading,
			Progress: byteFraction(ev),
			Filename: ev.Filename,
			Speed:    ev.Speed,
			ETA:      ev.ETA,
		}, true

	case "finished":
		return Event{
			Kind:              KindFinished,
			Filename:          ev.Filename,
			PendingConversion: pendingConversion(ev, requestedExt),
		}, true

	case "post_processing", "postprocessing":
		return Event{Kind: KindFinished, Filename: ev.Filename, PendingConversion: true}, true

	case "error":
		msg := ev.Message
		if msg == "" {
			msg = "download failed"
		}
		return Event{Kind: KindError, Message: msg}, true
	}

	return Event{}, false
}

// byteFraction computes a percentage with a strict order of
// preference: exact byte counters, then an estimated total, then the
// engine's own percentage, then zero.
func byteFraction(ev RawEvent) float64 {
	switch {
	case ev.TotalBytes > 0 && ev.DownloadedBytes >= 0:
		return ev.DownloadedBytes / ev.TotalBytes * 100
	case ev.TotalBytesEstimate > 0 && ev.DownloadedBytes >= 0:
		return ev.DownloadedBytes / ev.TotalBytesEstimate * 100
	case ev.Percent > 0:
		return ev.Percent
	}
	return 0.0
}

// playlistFraction accepts coarse per-item granularity for playlists.
func playlistFraction(index, count int) float64 {
	if count <= 0 || index < 0 {
		return 0.0
	}
	return float64(index) / float64(count) * 100
}

// pendingConversion reports whether the finished file still has to go
// through a format conversion before the final artifact exists.
func pendingConversion(ev RawEvent, requestedExt string) bool {
	if requestedExt == "" {
		return false
	}
	actual := ev.Ext
	if actual == "" && ev.Filename != "" {
		actual = strings.TrimPrefix(filepath.Ext(ev.Filename), ".")
	}
	if actual == "" {
		return false
	}
	return !strings.EqualFold(actual, requestedExt)
}
