package api

import (
	"errors"
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/website"
	"github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"github.com/gin-gonic/gin"
)

type WebsiteHandler struct {
	Website *website.Aggregator
}

func NewWebsiteHandler(agg *website.Aggregator) *WebsiteHandler {
	return &WebsiteHandler{Website: agg}
}

// GetConfig returns the published website config document.
func (h *WebsiteHandler) GetConfig(c *gin.Context) {
	doc, err := h.Website.FetchCurrent(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Website config has not been published yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch website config"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Sync rebuilds every section of the website config from the collections.
func (h *WebsiteHandler) Sync(c *gin.Context) {
	doc, err := h.Website.SyncAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync website config"})
		return
	}

	c.JSON(http.StatusOK, models.SyncResponse{Status: "Website config synced", Data: doc})
}
