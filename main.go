package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/renbkna/yt-dlp-ui/cmd"
	"github.com/renbkna/yt-dlp-ui/config"
	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/types"
)

func main() {
	var (
		server      bool
		port        int
		downloadURL string
		format      string
		audio       bool
		audioFormat string
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8000, "Port for web server mode")
	flag.StringVar(&downloadURL, "url", "", "URL to download once and exit")
	flag.StringVar(&format, "format", "best", "Format selector")
	flag.BoolVar(&audio, "audio", false, "Extract audio")
	flag.StringVar(&audioFormat, "audio-format", "mp3", "Audio codec when extracting audio")
	flag.Parse()

	if server {
		cmd.StartWebServer(port)
		return
	}

	if downloadURL == "" {
		flag.Usage()
		return
	}

	if err := runOnce(downloadURL, format, audio, audioFormat); err != nil {
		log.Fatalf("Download failed: %v", err)
	}
}

// runOnce drives a single download through the same pipeline the
// server uses, rendering progress as a terminal bar.
func runOnce(url, format string, audio bool, audioFormat string) error {
	cookieStore, err := services.NewCookieStore(config.GetCookieDir(), config.GetCookieExpiry())
	if err != nil {
		return err
	}
	cookieStore.SweepExpired()

	registry := services.NewRegistry()
	orchestrator := services.NewOrchestrator(registry, cookieStore, engine.NewLibraryRunner(), nil, nil, config.GetDownloadDir(), config.GetBrowser())
	orchestrator.Start(1)

	req := types.DownloadRequest{
		URL:          url,
		Format:       format,
		ExtractAudio: audio,
	}
	if audio {
		req.AudioFormat = audioFormat
	}

	taskID, err := orchestrator.Submit(req)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowCount(),
	)

	for {
		task, ok := registry.Get(taskID)
		if !ok {
			return fmt.Errorf("task %s disappeared", taskID)
		}
		bar.Set(int(task.Progress))

		if task.Status.IsTerminal() {
			bar.Finish()
			fmt.Println()
			if task.Status == types.StatusError {
				return fmt.Errorf("%s", task.Error)
			}
			log.Printf("Saved %s", task.Filename)
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
