package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/types"
)

// MediaHandler exposes synchronous metadata and format lookups.
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// lookupBody carries the optional client cookie bundle a POST lookup
// may attach. GET lookups carry no body.
type lookupBody struct {
	Cookies []types.Cookie `json:"cookies"`
}

// GetInfo returns the metadata record for ?url=&is_playlist=.
func (h *MediaHandler) GetInfo(c *gin.Context) {
	rawURL, isPlaylist, cookies, ok := h.lookupParams(c)
	if !ok {
		return
	}

	info, err := h.media.GetInfo(c.Request.Context(), rawURL, isPlaylist, cookies)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetFormats returns the enriched format listing for ?url=&is_playlist=.
func (h *MediaHandler) GetFormats(c *gin.Context) {
	rawURL, isPlaylist, cookies, ok := h.lookupParams(c)
	if !ok {
		return
	}

	formats, err := h.media.GetFormats(c.Request.Context(), rawURL, isPlaylist, cookies)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, formats)
}

func (h *MediaHandler) lookupParams(c *gin.Context) (string, bool, []types.Cookie, bool) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url is required"})
		return "", false, nil, false
	}
	isPlaylist, _ := strconv.ParseBool(c.DefaultQuery("is_playlist", "false"))

	var cookies []types.Cookie
	if c.Request.Method == http.MethodPost {
		var body lookupBody
		if err := c.ShouldBindJSON(&body); err == nil {
			cookies = body.Cookies
		}
	}
	return rawURL, isPlaylist, cookies, true
}

// writeError maps the error taxonomy onto responses: validation and
// engine failures are the caller's problem, anything else is opaque.
func (h *MediaHandler) writeError(c *gin.Context, err error) {
	var validation *types.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Msg})
		return
	}

	var engineErr *types.EngineError
	if errors.As(err, &engineErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":            engineErr.Msg,
			"auth_required":     engineErr.AuthRequired,
			"cookies_available": engineErr.CookiesAvailable,
		})
		return
	}

	log.Printf("handlers: media lookup: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
}
