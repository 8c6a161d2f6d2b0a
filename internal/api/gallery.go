package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/blob"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// GalleryHandler adds image upload and caption editing on top of the gallery CRUD.
type GalleryHandler struct {
	*ContentHandler
	Blobs blob.Store
}

func NewGalleryHandler(content *ContentHandler, blobs blob.Store) *GalleryHandler {
	return &GalleryHandler{ContentHandler: content, Blobs: blobs}
}

// UploadImage stores the multipart "file" and creates a gallery record pointing at it.
// Optional form fields: caption, category.
func (h *GalleryHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only jpg, png, gif and webp images are allowed"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	obj, err := h.Blobs.Put(c.Request.Context(), "gallery/"+uuid.NewString()+ext, file, mimeType)
	if err != nil {
		logging.Error().Err(err).Str("file", header.Filename).Msg("Error storing gallery image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	caption := strings.TrimSpace(c.PostForm("caption"))
	category := strings.TrimSpace(c.PostForm("category"))
	if category == "" {
		category = "general"
	}
	rec := store.Record{
		"url":      obj.URL,
		"caption":  caption,
		"alt":      caption,
		"category": category,
		"blobKey":  obj.Key,
	}
	id, err := h.Service.Add(c.Request.Context(), rec)
	if err != nil {
		logging.Error().Err(err).Msg("Error creating gallery record")
		if delErr := h.Blobs.Delete(c.Request.Context(), obj.Key); delErr != nil {
			logging.Warn().Err(delErr).Str("key", obj.Key).Msg("Error removing orphaned upload")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create image"})
		return
	}
	if !h.sync(c) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "Image uploaded", "id": id, "url": obj.URL})
}

type UpdateCaptionRequest struct {
	Caption string `json:"caption"`
}

// UpdateCaption sets the caption, which is also published as the image alt text.
func (h *GalleryHandler) UpdateCaption(c *gin.Context) {
	var req UpdateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caption := strings.TrimSpace(req.Caption)
	h.update(c, store.Record{"caption": caption, "alt": caption})
}

// DeleteImage removes the record, then the uploaded file if the record owned one.
func (h *GalleryHandler) DeleteImage(c *gin.Context) {
	ctx := c.Request.Context()
	var key string
	if rec, err := h.Service.FetchOne(ctx, c.Param("id")); err == nil {
		key = rec.String("blobKey")
	}

	h.Delete(c)
	if key == "" || c.Writer.Status() != http.StatusOK {
		return
	}
	if err := h.Blobs.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Error deleting gallery blob")
	}
}
