package types

// DownloadedFile represents a file found under a task's output directory.
type DownloadedFile struct {
	TaskID   string         `json:"task_id"`
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Format   string         `json:"format"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata holds tags read from a downloaded audio file.
type AudioMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}
