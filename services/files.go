package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/renbkna/yt-dlp-ui/types"
)

var audioExts = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".opus": "audio/opus",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
}

var videoExts = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// FileService manages the task output directories under the download
// root. Each task writes into a directory named by its id.
type FileService struct {
	root string
}

// NewFileService returns a service rooted at the download directory.
func NewFileService(root string) *FileService {
	return &FileService{root: root}
}

// ListDownloads walks the download root and returns every media file,
// reading tags from audio files where possible.
func (s *FileService) ListDownloads() ([]types.DownloadedFile, error) {
	var files []types.DownloadedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("files: skipping %s: %v", path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		_, isAudio := audioExts[ext]
		_, isVideo := videoExts[ext]
		if !isAudio && !isVideo {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = path
		}

		file := types.DownloadedFile{
			TaskID:   taskIDFromPath(rel),
			Filename: info.Name(),
			Path:     filepath.ToSlash(rel),
			Size:     info.Size(),
			Format:   strings.TrimPrefix(ext, "."),
		}
		if isAudio {
			file.Metadata = readAudioMetadata(path)
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CleanupOlderThan removes task output directories whose modification
// time precedes now minus the given number of days, returning how many
// were removed. Fewer than one day is rejected so a typo cannot wipe
// everything in flight.
func (s *FileService) CleanupOlderThan(days int) (int, error) {
	if days < 1 {
		return 0, types.NewValidationError("days must be at least 1")
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
				log.Printf("files: cleanup %s: %v", e.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// ValidatePath rejects traversal attempts and absolute paths.
func (s *FileService) ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return types.NewValidationError("empty path not allowed")
	}
	if strings.Contains(path, "..") {
		return types.NewValidationError("path traversal not allowed")
	}
	if strings.HasPrefix(path, "/") {
		return types.NewValidationError("absolute paths not allowed")
	}
	return nil
}

// Resolve maps a validated relative path to an absolute path inside
// the download root.
func (s *FileService) Resolve(path string) (string, error) {
	if err := s.ValidatePath(path); err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absRoot, filepath.FromSlash(path))
	if !strings.HasPrefix(full, absRoot+string(os.PathSeparator)) {
		return "", types.NewValidationError("path escapes download root")
	}
	return full, nil
}

// ContentType returns the MIME type for a downloaded file.
func (s *FileService) ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := audioExts[ext]; ok {
		return ct
	}
	if ct, ok := videoExts[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// taskIDFromPath takes the first segment of a relative output path,
// which is the task directory name.
func taskIDFromPath(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return ""
}

// readAudioMetadata reads tags from an audio file, best effort.
func readAudioMetadata(path string) *types.AudioMetadata {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("files: open %s: %v", path, err)
		return nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	return &types.AudioMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
}
