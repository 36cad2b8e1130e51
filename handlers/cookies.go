package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/types"
)

// CookieHandler validates uploaded cookie bundles.
type CookieHandler struct {
	cookies *services.CookieStore
}

// NewCookieHandler creates a new cookie handler.
func NewCookieHandler(cookies *services.CookieStore) *CookieHandler {
	return &CookieHandler{cookies: cookies}
}

// UploadCookies validates a bundle by materializing it and releasing
// it immediately. Nothing persists beyond the round-trip; downloads
// carry their cookies inline per request.
func (h *CookieHandler) UploadCookies(c *gin.Context) {
	var bundle types.CookieBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	artifact, err := h.cookies.Materialize(bundle)
	if err != nil {
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Msg})
			return
		}
		log.Printf("handlers: cookie validation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	h.cookies.Release(artifact)

	c.JSON(http.StatusOK, gin.H{"status": "valid", "cookies": len(bundle.Cookies)})
}
