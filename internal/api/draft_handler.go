package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"aiResume/internal/api/middleware"
	"aiResume/internal/drafts"
	"aiResume/internal/errcode"
)

func (h *Handler) loadDraft(c *gin.Context, id string) (drafts.Draft, error) {
	if h.Drafts == nil {
		return drafts.Draft{}, drafts.ErrNotFound
	}
	return h.Drafts.Get(c.Request.Context(), id)
}

// GetDraft handles GET /api/drafts/:id.
func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.loadDraft(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			NotFound(c, "Draft not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load draft failed", slog.Any("error", err))
		Internal(c, errcode.SystemError, "Failed to load draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft})
}
