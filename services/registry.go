package services

import (
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/types"
)

// Progress is clamped below this bound until a task completes, so a
// poller never sees 100% on a task that can still fail.
const maxLiveProgress = 99.9

const shardCount = 16

// Registry is the store of record for every submitted task. Tasks are
// sharded by id so mutations on unrelated tasks never contend; within
// one task the executing worker is the only writer while pollers read
// snapshots.
type Registry struct {
	shards [shardCount]*registryShard
}

type registryShard struct {
	mu    sync.RWMutex
	tasks map[string]*types.Task
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &registryShard{tasks: make(map[string]*types.Task)}
	}
	return r
}

func (r *Registry) shard(id string) *registryShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return r.shards[h.Sum32()%shardCount]
}

// Create registers a fresh task in queued state. Ids are generated at
// submission and never reused, so an existing id is a caller bug.
func (r *Registry) Create(id, url string) error {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		return fmt.Errorf("task %s already exists", id)
	}
	s.tasks[id] = &types.Task{
		ID:        id,
		URL:       url,
		Status:    types.StatusQueued,
		Progress:  0.0,
		CreatedAt: time.Now(),
	}
	return nil
}

// Get returns a read-only snapshot of a task.
func (r *Registry) Get(id string) (types.Task, bool) {
	s := r.shard(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, false
	}
	return *t, true
}

// List returns snapshots of every known task.
func (r *Registry) List() []types.Task {
	var out []types.Task
	for _, s := range r.shards {
		s.mu.RLock()
		for _, t := range s.tasks {
			out = append(out, *t)
		}
		s.mu.RUnlock()
	}
	return out
}

// MarkDownloading moves a queued task to downloading when its worker
// picks it up. No-op once the task left the queued state.
func (r *Registry) MarkDownloading(id string) {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok && t.Status == types.StatusQueued {
		t.Status = types.StatusDownloading
	}
}

// ApplyEvent is the only mutation entry point for progress updates.
// Unknown or out-of-order events are swallowed: a best-effort progress
// stream must never abort a download.
func (r *Registry) ApplyEvent(id string, ev engine.Event) {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		log.Printf("registry: progress event for unknown task %s dropped", id)
		return
	}
	if t.Status.IsTerminal() {
		return
	}

	switch ev.Kind {
	case engine.KindDownloading:
		t.Status = types.StatusDownloading
		t.Progress = clampProgress(t.Progress, ev.Progress)
		if ev.Filename != "" {
			t.Filename = ev.Filename
		}
		t.Speed = ev.Speed
		t.ETA = ev.ETA

	case engine.KindPlaylist:
		t.Status = types.StatusDownloading
		t.Progress = clampProgress(t.Progress, ev.Progress)
		if ev.Filename != "" {
			t.Filename = ev.Filename
		}
		t.Speed = ""
		t.ETA = ""

	case engine.KindFinished:
		if ev.Filename != "" {
			t.Filename = ev.Filename
		}
		if ev.PendingConversion {
			t.Status = types.StatusProcessing
			t.Speed = ""
			t.ETA = ""
		} else {
			finalize(t, types.StatusCompleted, "")
		}

	case engine.KindError:
		finalize(t, types.StatusError, ev.Message)

	default:
		log.Printf("registry: unknown event kind %d for task %s dropped", ev.Kind, id)
	}
}

// FinalizeSuccess forces a completed terminal state. Idempotent.
func (r *Registry) FinalizeSuccess(id string) {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok && !t.Status.IsTerminal() {
		finalize(t, types.StatusCompleted, "")
	}
}

// FinalizeError forces an error terminal state. Idempotent.
func (r *Registry) FinalizeError(id, msg string) {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok && !t.Status.IsTerminal() {
		finalize(t, types.StatusError, msg)
	}
}

func finalize(t *types.Task, status types.TaskStatus, errMsg string) {
	t.Status = status
	t.Speed = ""
	t.ETA = ""
	if status == types.StatusCompleted {
		t.Progress = 100.0
	} else {
		t.Error = errMsg
	}
	now := time.Now()
	t.FinishedAt = &now
}

// clampProgress keeps progress monotonically non-decreasing and below
// 100 until the task actually completes.
func clampProgress(current, next float64) float64 {
	if next > maxLiveProgress {
		next = maxLiveProgress
	}
	if next < current {
		return current
	}
	return next
}
