package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"

	"github.com/gin-gonic/gin"
)

// SyncFunc republishes one section of the public website config.
type SyncFunc func(ctx context.Context) error

// ContentHandler serves CRUD for one website collection (programs, gallery, testimonials)
// and republishes its section after every change.
type ContentHandler struct {
	Service *services.CollectionService
	Sync    SyncFunc
	Label   string // singular, for messages: "program", "image", "testimonial"
}

func NewContentHandler(svc *services.CollectionService, sync SyncFunc, label string) *ContentHandler {
	return &ContentHandler{Service: svc, Sync: sync, Label: label}
}

func (h *ContentHandler) List(c *gin.Context) {
	records, err := h.Service.FetchAll(c.Request.Context())
	if err != nil {
		logging.Error().Err(err).Str("collection", h.Service.Collection()).Msg("Error fetching records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + h.Service.Collection()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *ContentHandler) Get(c *gin.Context) {
	rec, err := h.Service.FetchOne(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(h.Label) + " not found"})
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("collection", h.Service.Collection()).Str("id", c.Param("id")).Msg("Error fetching record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + h.Label})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *ContentHandler) Create(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.Service.Add(c.Request.Context(), store.Record(body))
	if err != nil {
		logging.Error().Err(err).Str("collection", h.Service.Collection()).Msg("Error creating record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create " + h.Label})
		return
	}
	if !h.sync(c) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": capitalize(h.Label) + " created", "id": id})
}

func (h *ContentHandler) Update(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.update(c, store.Record(body))
}

func (h *ContentHandler) update(c *gin.Context, partial store.Record) {
	err := h.Service.Update(c.Request.Context(), c.Param("id"), partial)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(h.Label) + " not found"})
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("collection", h.Service.Collection()).Str("id", c.Param("id")).Msg("Error updating record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update " + h.Label})
		return
	}
	if !h.sync(c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": capitalize(h.Label) + " updated"})
}

func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		logging.Error().Err(err).Str("collection", h.Service.Collection()).Str("id", c.Param("id")).Msg("Error deleting record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + h.Label})
		return
	}
	if !h.sync(c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": capitalize(h.Label) + " deleted"})
}

// sync republishes the section; on failure it writes the error response and returns false.
// The store write has already happened at that point.
func (h *ContentHandler) sync(c *gin.Context) bool {
	if h.Sync == nil {
		return true
	}
	if err := h.Sync(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Saved, but failed to update the website"})
		return false
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
