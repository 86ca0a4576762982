package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"aiResume/internal/api/middleware"
	"aiResume/internal/drafts"
	"aiResume/internal/errcode"
	"aiResume/internal/export"
)

// ExportRequest carries either the content directly or the id of a stored draft.
// Explicit content and filename take precedence over the draft.
type ExportRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename" binding:"omitempty,docname"`
	DraftID  string `json:"draftId" binding:"omitempty,uuid"`
}

// ExportResponse is the success body of both export endpoints.
type ExportResponse struct {
	Success     bool   `json:"success"`
	FilePath    string `json:"filePath"`
	DownloadURL string `json:"downloadUrl"`
	Message     string `json:"message"`
}

// ExportPDF handles POST /api/export-pdf.
func (h *Handler) ExportPDF(c *gin.Context) {
	h.export(c, export.FormatPDF)
}

// ExportDOCX handles POST /api/export-docx.
func (h *Handler) ExportDOCX(c *gin.Context) {
	h.export(c, export.FormatDOCX)
}

func (h *Handler) export(c *gin.Context, format export.Format) {
	log := middleware.LoggerFromContext(c).With(slog.String("format", string(format)))

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid export request: "+bindingMessage(err))
		return
	}

	job := export.Job{Content: req.Content, Filename: strings.TrimSpace(req.Filename)}
	if req.DraftID != "" && (strings.TrimSpace(job.Content) == "" || job.Filename == "") {
		draft, err := h.loadDraft(c, req.DraftID)
		if err != nil {
			if errors.Is(err, drafts.ErrNotFound) {
				NotFound(c, "Draft not found")
				return
			}
			log.Error("load draft failed", slog.Any("error", err))
			Internal(c, errcode.SystemError, "Failed to load draft")
			return
		}
		if strings.TrimSpace(job.Content) == "" {
			job.Content = draft.Content
		}
		if job.Filename == "" {
			job.Filename = draft.Filename
		}
	}

	run := h.Exporter.ExportPDF
	failure, success := "Failed to export PDF", "PDF exported successfully!"
	if format == export.FormatDOCX {
		run = h.Exporter.ExportDOCX
		failure, success = "Failed to export Word document", "Word document exported successfully!"
	}

	res, err := run(c.Request.Context(), job)
	if err != nil {
		if errors.Is(err, export.ErrInvalidJob) {
			BadRequest(c, err.Error())
			return
		}
		log.Error("export failed", slog.Any("error", err))
		Internal(c, errcode.Export, failure)
		return
	}

	if h.Cleanup != nil {
		if err := h.Cleanup.Schedule(c.Request.Context(), res.Filename, middleware.GetCorrelationID(c)); err != nil {
			log.Warn("schedule cleanup failed", slog.String("file", res.Filename), slog.Any("error", err))
		}
	}

	c.JSON(http.StatusOK, ExportResponse{
		Success:     true,
		FilePath:    res.FilePath,
		DownloadURL: "/download/" + url.PathEscape(res.Filename),
		Message:     success,
	})
}
