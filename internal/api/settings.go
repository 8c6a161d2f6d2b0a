package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves one settings singleton (whatsapp or social).
type SettingsHandler struct {
	Name  string
	Fetch func(ctx context.Context) (store.Record, error)
	Save  func(ctx context.Context, data store.Record) error
	Sync  SyncFunc
}

// Get returns the stored settings, or an empty object if they were never saved.
func (h *SettingsHandler) Get(c *gin.Context) {
	rec, err := h.Fetch(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("settings", h.Name).Msg("Error fetching settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	delete(rec, "id")

	c.JSON(http.StatusOK, rec)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Save(c.Request.Context(), store.Record(body)); err != nil {
		logging.Error().Err(err).Str("settings", h.Name).Msg("Error saving settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	if err := h.Sync(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Saved, but failed to update the website"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Settings saved"})
}
