package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"aiResume/internal/api/middleware"
	"aiResume/internal/errcode"
	"aiResume/internal/storage"
)

// Download handles GET /download/:filename and serves generated exports only.
// Names that are not plain file names are reported as missing.
func (h *Handler) Download(c *gin.Context) {
	name := c.Param("filename")

	rc, info, err := h.Generated.Open(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(c, "File not found")
			return
		}
		middleware.LoggerFromContext(c).Error("open file failed", slog.String("file", name), slog.Any("error", err))
		Internal(c, errcode.SystemError, "Failed to read file")
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": info.Name})
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
	})
}
