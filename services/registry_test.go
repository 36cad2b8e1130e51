package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/types"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "https://example.com/v"))

	task, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, types.StatusQueued, task.Status)
	assert.Zero(t, task.Progress)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Error(t, r.Create("t1", "https://example.com/v"))
}

func TestRegistryProgressMonotone(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 40})
	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 20})

	task, _ := r.Get("t1")
	assert.InDelta(t, 40.0, task.Progress, 0.001)
}

func TestRegistryProgressClampedBeforeTerminal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 100})
	task, _ := r.Get("t1")
	assert.InDelta(t, 99.9, task.Progress, 0.001)
	assert.Equal(t, types.StatusDownloading, task.Status)

	r.FinalizeSuccess("t1")
	task, _ = r.Get("t1")
	assert.Equal(t, 100.0, task.Progress)
	assert.Equal(t, types.StatusCompleted, task.Status)
}

func TestRegistryFinishedEvent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.ApplyEvent("t1", engine.Event{Kind: engine.KindFinished, Filename: "out.mp4"})
	task, _ := r.Get("t1")
	assert.Equal(t, types.StatusCompleted, task.Status)
	assert.Equal(t, 100.0, task.Progress)
	assert.Equal(t, "out.mp4", task.Filename)
}

func TestRegistryPendingConversionMovesToProcessing(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 80, Speed: "2MB/s", ETA: "5s"})
	r.ApplyEvent("t1", engine.Event{Kind: engine.KindFinished, PendingConversion: true})

	task, _ := r.Get("t1")
	assert.Equal(t, types.StatusProcessing, task.Status)
	assert.Empty(t, task.Speed)
	assert.Empty(t, task.ETA)
	assert.Less(t, task.Progress, 100.0)
}

func TestRegistryTerminalIsImmutable(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.FinalizeError("t1", "boom")
	before, _ := r.Get("t1")

	// a second finalize and late progress events are no-ops
	r.FinalizeError("t1", "different message")
	r.FinalizeSuccess("t1")
	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 50})

	after, _ := r.Get("t1")
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Error, after.Error)
	assert.Equal(t, before.Progress, after.Progress)
}

func TestRegistrySpeedClearedOutsideDownloading(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("t1", "u"))

	r.ApplyEvent("t1", engine.Event{Kind: engine.KindDownloading, Progress: 10, Speed: "1MB/s", ETA: "1m"})
	r.FinalizeSuccess("t1")

	task, _ := r.Get("t1")
	assert.Empty(t, task.Speed)
	assert.Empty(t, task.ETA)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("task-%d", i)
		require.NoError(t, r.Create(id, "u"))

		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			for p := 0; p <= 90; p += 10 {
				r.ApplyEvent(id, engine.Event{Kind: engine.KindDownloading, Progress: float64(p)})
			}
			r.FinalizeSuccess(id)
		}(id)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Get(id)
			}
		}(id)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		task, ok := r.Get(fmt.Sprintf("task-%d", i))
		require.True(t, ok)
		assert.Equal(t, types.StatusCompleted, task.Status)
		assert.Equal(t, 100.0, task.Progress)
	}
}
