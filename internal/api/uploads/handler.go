package uploads

import (
	"errors"
	"log"
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/storage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store *storage.Client
}

func NewHandler(store *storage.Client) *Handler {
	return &Handler{store: store}
}

// GET /storage/status
//
// The submission form uses this to fall back to file-less intake when the
// bucket is unavailable.
func (h *Handler) StorageStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.store.Enabled()})
}

// POST /uploads (multipart, field "file")
func (h *Handler) UploadFile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if !h.store.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File uploads are temporarily unavailable"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()

	path, err := h.store.Upload(
		c.Request.Context(),
		userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		f,
	)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File uploads are temporarily unavailable"})
		default:
			log.Println("upload failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": path})
}
