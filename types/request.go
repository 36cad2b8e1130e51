package types

// DownloadRequest describes the desired output for one submitted download.
// It is immutable once submitted.
type DownloadRequest struct {
	URL               string   `json:"url" binding:"required"`
	Format            string   `json:"format"`
	ExtractAudio      bool     `json:"extract_audio"`
	AudioFormat       string   `json:"audio_format"`
	Quality           string   `json:"quality"`
	EmbedMetadata     bool     `json:"embed_metadata"`
	EmbedThumbnail    bool     `json:"embed_thumbnail"`
	DownloadSubtitles bool     `json:"download_subtitles"`
	SubtitleLanguages []string `json:"subtitle_languages"`
	DownloadPlaylist  bool     `json:"download_playlist"`
	Sponsorblock      bool     `json:"sponsorblock"`
	UseBrowserCookies bool     `json:"use_browser_cookies"`
	Cookies           []Cookie `json:"cookies"`
}

// DownloadResponse is returned when a download has been accepted.
type DownloadResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VideoInfo is the metadata record for a single video or playlist.
type VideoInfo struct {
	Title       string           `json:"title"`
	Duration    float64          `json:"duration,omitempty"`
	Thumbnail   string           `json:"thumbnail,omitempty"`
	Description string           `json:"description,omitempty"`
	Uploader    string           `json:"uploader,omitempty"`
	ViewCount   int64            `json:"view_count,omitempty"`
	UploadDate  string           `json:"upload_date,omitempty"`
	IsPlaylist  bool             `json:"is_playlist"`
	Entries     []map[string]any `json:"entries,omitempty"`
}

// FormatEntry is one enriched encoding option for a video.
type FormatEntry struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext,omitempty"`
	FormatNote string  `json:"format_note,omitempty"`
	VCodec     string  `json:"vcodec,omitempty"`
	ACodec     string  `json:"acodec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	TBR        float64 `json:"tbr,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
	IsPremium  bool    `json:"is_premium"`
}

// FormatsInfo is the response body for a format listing.
type FormatsInfo struct {
	IsPlaylist bool             `json:"is_playlist"`
	Formats    []FormatEntry    `json:"formats,omitempty"`
	Entries    []map[string]any `json:"entries,omitempty"`
}
