package services

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/types"
	"github.com/renbkna/yt-dlp-ui/websocket"
)

// Orchestrator ties the registry, credential store and engine
// together. Submission is fire-and-forget: it allocates a task and
// hands it to a bounded worker pool so the request path returns
// immediately and stays free to answer status polls.
type Orchestrator struct {
	registry    *Registry
	cookies     *CookieStore
	downloader  engine.Downloader
	hub         websocket.Hub
	history     *History
	downloadDir string
	browser     string

	queue chan downloadJob

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

type downloadJob struct {
	id  string
	req types.DownloadRequest
}

// NewOrchestrator wires the download pipeline. hub and history may be
// nil (CLI mode runs without either).
func NewOrchestrator(registry *Registry, cookies *CookieStore, downloader engine.Downloader, hub websocket.Hub, history *History, downloadDir, browser string) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		cookies:     cookies,
		downloader:  downloader,
		hub:         hub,
		history:     history,
		downloadDir: downloadDir,
		browser:     browser,
		queue:       make(chan downloadJob, 100),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// Start launches the worker pool.
func (o *Orchestrator) Start(workers int) {
	for i := 0; i < workers; i++ {
		go o.worker()
	}
}

// Submit allocates a fresh task for the request and schedules its
// execution. The caller polls GetStatus (or subscribes) for progress.
func (o *Orchestrator) Submit(req types.DownloadRequest) (string, error) {
	id := uuid.New().String()
	if err := o.registry.Create(id, req.URL); err != nil {
		return "", err
	}
	o.queue <- downloadJob{id: id, req: req}
	return id, nil
}

// Cancel propagates a best-effort cancellation into a running download,
// or fails a still-queued task outright. Returns false for unknown or
// already-terminal tasks.
func (o *Orchestrator) Cancel(id string) bool {
	o.mu.Lock()
	cancel, running := o.cancels[id]
	o.mu.Unlock()

	if running {
		cancel()
		return true
	}

	task, ok := o.registry.Get(id)
	if !ok || task.Status.IsTerminal() {
		return false
	}
	o.registry.FinalizeError(id, "download cancelled")
	o.publish(id)
	return true
}

func (o *Orchestrator) worker() {
	for job := range o.queue {
		if task, ok := o.registry.Get(job.id); !ok || task.Status.IsTerminal() {
			continue // cancelled while queued
		}
		o.execute(job)
	}
}

// execute runs one download end to end: options, credentials, engine
// call with the progress pump, finalization, archival. Any credential
// artifact acquired here is released on every exit path.
func (o *Orchestrator) execute(job downloadJob) {
	ctx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[job.id] = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.cancels, job.id)
		o.mu.Unlock()
		cancel()
	}()

	opts := engine.BuildOptions(job.req, job.id, o.downloadDir)

	// Client-supplied cookies take precedence over a browser source.
	if len(job.req.Cookies) > 0 {
		artifact, err := o.cookies.Materialize(types.CookieBundle{Cookies: job.req.Cookies})
		if err != nil {
			o.registry.FinalizeError(job.id, err.Error())
			o.finish(job.id)
			return
		}
		defer o.cookies.Release(artifact)
		opts.CookieFile = artifact
	} else if job.req.UseBrowserCookies && o.browser != "" {
		opts.CookiesFromBrowser = o.browser
	}

	if err := os.MkdirAll(filepath.Join(o.downloadDir, job.id), 0o755); err != nil {
		o.registry.FinalizeError(job.id, "could not create output directory")
		o.finish(job.id)
		log.Printf("orchestrator: task %s: %v", job.id, err)
		return
	}

	o.registry.MarkDownloading(job.id)
	o.publish(job.id)

	// The engine call blocks on its own goroutine-confined worker; raw
	// events are translated and pushed through a channel so registry
	// updates never run inside the engine's callback timing.
	events := make(chan engine.Event, 64)
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		for ev := range events {
			o.registry.ApplyEvent(job.id, ev)
			o.publish(job.id)
		}
	}()

	hook := func(raw engine.RawEvent) {
		if ev, ok := engine.Translate(raw, opts.RequestedExt); ok {
			events <- ev
		}
	}

	err := o.downloader.Download(ctx, job.req.URL, opts, hook)
	close(events)
	<-pumped

	switch {
	case err == nil:
		// no explicit terminal event from the engine still counts as done
		o.registry.FinalizeSuccess(job.id)
	case errors.Is(err, context.Canceled):
		o.registry.FinalizeError(job.id, "download cancelled")
	default:
		o.registry.FinalizeError(job.id, err.Error())
	}
	o.finish(job.id)
}

// finish broadcasts the terminal snapshot and archives it.
func (o *Orchestrator) finish(id string) {
	o.publish(id)
	if o.history == nil {
		return
	}
	if task, ok := o.registry.Get(id); ok {
		if err := o.history.Record(task); err != nil {
			log.Printf("orchestrator: archive task %s: %v", id, err)
		}
	}
}

// publish pushes the current task snapshot to WebSocket subscribers.
func (o *Orchestrator) publish(id string) {
	if o.hub == nil {
		return
	}
	task, ok := o.registry.Get(id)
	if !ok {
		return
	}

	msgType := "progress"
	message := ""
	switch task.Status {
	case types.StatusCompleted:
		msgType = "complete"
	case types.StatusError:
		msgType = "error"
		message = task.Error
	}

	o.hub.BroadcastProgress(types.ProgressMessage{
		TaskID:    id,
		Type:      msgType,
		Status:    task.Status,
		Progress:  task.Progress,
		Filename:  task.Filename,
		Speed:     task.Speed,
		Message:   message,
		Timestamp: time.Now(),
	})
}
