package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renbkna/yt-dlp-ui/types"
)

func TestBuildOptionsFormatDefaulting(t *testing.T) {
	tests := []struct {
		name     string
		request  types.DownloadRequest
		expected string
	}{
		{
			name:     "explicit format kept",
			request:  types.DownloadRequest{Format: "137+140"},
			expected: "137+140",
		},
		{
			name:     "audio extraction with best becomes bestaudio",
			request:  types.DownloadRequest{Format: "best", ExtractAudio: true},
			expected: "bestaudio",
		},
		{
			name:     "audio extraction with empty becomes bestaudio",
			request:  types.DownloadRequest{ExtractAudio: true},
			expected: "bestaudio",
		},
		{
			name:     "audio extraction keeps explicit format",
			request:  types.DownloadRequest{Format: "251", ExtractAudio: true},
			expected: "251",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := BuildOptions(tt.request, "task-1", "downloads")
			assert.Equal(t, tt.expected, opts.Format)
		})
	}
}

func TestBuildOptionsOutputNamespacedByTask(t *testing.T) {
	opts := BuildOptions(types.DownloadRequest{Format: "best"}, "abc-123", "downloads")
	assert.Equal(t, filepath.Join("downloads", "abc-123", "%(title)s.%(ext)s"), opts.OutputTemplate)
}

func TestBuildOptionsRetryPolicyAlwaysSet(t *testing.T) {
	opts := BuildOptions(types.DownloadRequest{}, "t", "d")
	assert.Equal(t, 10, opts.Retries)
	assert.Equal(t, 10, opts.FragmentRetries)
	assert.Equal(t, "exp=1:120", opts.RetrySleep)
}

func TestBuildOptionsDeterministic(t *testing.T) {
	req := types.DownloadRequest{
		URL:               "https://example.com/v",
		Format:            "best",
		ExtractAudio:      true,
		AudioFormat:       "mp3",
		DownloadSubtitles: true,
		SubtitleLanguages: []string{"en", "de"},
	}
	a := BuildOptions(req, "same-task", "dir")
	b := BuildOptions(req, "same-task", "dir")
	assert.Equal(t, a, b)
}

func TestBuildOptionsRequestedExt(t *testing.T) {
	opts := BuildOptions(types.DownloadRequest{ExtractAudio: true, AudioFormat: "mp3"}, "t", "d")
	assert.Equal(t, "mp3", opts.RequestedExt)

	opts = BuildOptions(types.DownloadRequest{Format: "best"}, "t", "d")
	assert.Empty(t, opts.RequestedExt)
}
