package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/types"
)

// fakeDownloader scripts the raw events the engine would emit.
type fakeDownloader struct {
	events  []engine.RawEvent
	err     error
	block   bool
	gotOpts *engine.OptionsBundle
	started chan struct{}
}

func (f *fakeDownloader) Download(ctx context.Context, url string, opts *engine.OptionsBundle, hook func(engine.RawEvent)) error {
	f.gotOpts = opts
	if f.started != nil {
		close(f.started)
	}
	for _, ev := range f.events {
		hook(ev)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func newTestOrchestrator(t *testing.T, dl engine.Downloader) (*Orchestrator, *Registry) {
	t.Helper()
	store, err := NewCookieStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	registry := NewRegistry()
	o := NewOrchestrator(registry, store, dl, nil, nil, t.TempDir(), "")
	o.Start(1)
	return o, registry
}

func waitForTerminal(t *testing.T, registry *Registry, id string) types.Task {
	t.Helper()
	var task types.Task
	require.Eventually(t, func() bool {
		snapshot, ok := registry.Get(id)
		if !ok {
			return false
		}
		task = snapshot
		return task.Status.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestOrchestratorCompletesTask(t *testing.T) {
	dl := &fakeDownloader{events: []engine.RawEvent{
		{Status: "downloading", DownloadedBytes: 25, TotalBytes: 100, Filename: "v.mp4", Speed: "1.0MB/s"},
		{Status: "downloading", DownloadedBytes: 100, TotalBytes: 100, Filename: "v.mp4"},
		{Status: "finished", Filename: "v.mp4"},
	}}
	o, registry := newTestOrchestrator(t, dl)

	id, err := o.Submit(types.DownloadRequest{URL: "https://example.com/v", Format: "best"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	task := waitForTerminal(t, registry, id)
	assert.Equal(t, types.StatusCompleted, task.Status)
	assert.Equal(t, 100.0, task.Progress)
	assert.Equal(t, "v.mp4", task.Filename)
	assert.Empty(t, task.Speed)
}

func TestOrchestratorNoTerminalEventStillCompletes(t *testing.T) {
	dl := &fakeDownloader{events: []engine.RawEvent{
		{Status: "downloading", DownloadedBytes: 50, TotalBytes: 100},
	}}
	o, registry := newTestOrchestrator(t, dl)

	id, err := o.Submit(types.DownloadRequest{URL: "https://example.com/v"})
	require.NoError(t, err)

	task := waitForTerminal(t, registry, id)
	assert.Equal(t, types.StatusCompleted, task.Status)
	assert.Equal(t, 100.0, task.Progress)
}

func TestOrchestratorEngineFailure(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("video unavailable")}
	o, registry := newTestOrchestrator(t, dl)

	id, err := o.Submit(types.DownloadRequest{URL: "https://example.com/v"})
	require.NoError(t, err)

	task := waitForTerminal(t, registry, id)
	assert.Equal(t, types.StatusError, task.Status)
	assert.Equal(t, "video unavailable", task.Error)
	assert.NotEqual(t, 100.0, task.Progress)
}

func TestOrchestratorReleasesCookieArtifact(t *testing.T) {
	dl := &fakeDownloader{events: []engine.RawEvent{{Status: "finished"}}}

	cookieDir := t.TempDir()
	store, err := NewCookieStore(cookieDir, time.Hour)
	require.NoError(t, err)

	registry := NewRegistry()
	o := NewOrchestrator(registry, store, dl, nil, nil, t.TempDir(), "")
	o.Start(1)

	id, err := o.Submit(types.DownloadRequest{
		URL:     "https://example.com/v",
		Cookies: []types.Cookie{{Domain: "example.com", Name: "s", Value: "v"}},
	})
	require.NoError(t, err)

	waitForTerminal(t, registry, id)

	require.NotNil(t, dl.gotOpts)
	assert.NotEmpty(t, dl.gotOpts.CookieFile)
	entries, err := os.ReadDir(cookieDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "cookie artifact must be released after the download")
}

func TestOrchestratorInvalidCookiesFailTask(t *testing.T) {
	dl := &fakeDownloader{}
	o, registry := newTestOrchestrator(t, dl)

	id, err := o.Submit(types.DownloadRequest{
		URL:     "https://example.com/v",
		Cookies: []types.Cookie{{Name: "missing-domain"}},
	})
	require.NoError(t, err)

	task := waitForTerminal(t, registry, id)
	assert.Equal(t, types.StatusError, task.Status)
	assert.Contains(t, task.Error, "domain")
}

func TestOrchestratorCancelRunning(t *testing.T) {
	dl := &fakeDownloader{block: true, started: make(chan struct{})}
	o, registry := newTestOrchestrator(t, dl)

	id, err := o.Submit(types.DownloadRequest{URL: "https://example.com/v"})
	require.NoError(t, err)

	<-dl.started
	require.True(t, o.Cancel(id))

	task := waitForTerminal(t, registry, id)
	assert.Equal(t, types.StatusError, task.Status)
	assert.Equal(t, "download cancelled", task.Error)

	// cancelling a finished task reports false
	assert.False(t, o.Cancel(id))
	assert.False(t, o.Cancel("unknown"))
}
