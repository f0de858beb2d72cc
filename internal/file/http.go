package file

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/khanbek/khancloud/internal/auth"
	"github.com/khanbek/khancloud/internal/metrics"
)

// RegisterRoutes mounts file operations under /files. The group is expected
// to carry the auth middleware; handlers still refuse requests without an
// authenticated principal.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	filesGroup := group.Group("/files")
	{
		filesGroup.POST("/upload", handler.upload)
		filesGroup.GET("", handler.list)
		filesGroup.GET("/stats", handler.stats)
		filesGroup.GET("/:id/download", handler.download)
		filesGroup.DELETE("/:id", handler.remove)
	}
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) upload(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}

	ownerID, err := uuid.Parse(user.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file field is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	defer src.Close()

	stored, err := h.service.Upload(c.Request.Context(), src, fileHeader.Filename, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	metrics.ObserveUpload(stored.Size)

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"file":    stored,
	})
}

func (h *httpHandler) list(c *gin.Context) {
	files, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if files == nil {
		files = []StoredFile{}
	}
	c.JSON(http.StatusOK, files)
}

func (h *httpHandler) download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		return
	}

	meta, reader, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrFileNotFound, ErrBlobNotFound:
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.OriginalName))
	c.Header("Content-Length", fmt.Sprintf("%d", meta.Size))
	c.Header("Content-Type", "application/octet-stream")

	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *httpHandler) remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		switch err {
		case ErrFileNotFound:
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func (h *httpHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
