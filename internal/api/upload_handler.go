package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aiResume/internal/api/middleware"
	"aiResume/internal/errcode"
	"aiResume/internal/resume"
)

// VirusScanner reports whether the content is clean.
type VirusScanner interface {
	Scan(r io.Reader) (bool, error)
}

// ClamdScanner 通过 clamd 的 INSTREAM 接口扫描上传内容。
type ClamdScanner struct {
	client *clamd.Clamd
}

func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

func (s *ClamdScanner) Scan(r io.Reader) (bool, error) {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return false, fmt.Errorf("scan stream: %w", err)
	}
	clean := true
	for result := range results {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			clean = false
		default:
			return false, fmt.Errorf("clamd: %s %s", result.Status, result.Description)
		}
	}
	return clean, nil
}

// multipartOverhead allows for boundaries and part headers around the file.
const multipartOverhead = 1 << 20

// Upload handles POST /api/uploads with a multipart "file" field.
func (h *Handler) Upload(c *gin.Context) {
	log := middleware.LoggerFromContext(c)
	if h.Uploads == nil {
		Error(c, http.StatusServiceUnavailable, errcode.SystemError, "Uploads are not enabled")
		return
	}

	limit := h.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, errcode.Validation, "File too large")
			return
		}
		BadRequest(c, "missing file")
		return
	}
	if file.Size > limit {
		Error(c, http.StatusRequestEntityTooLarge, errcode.Validation, "File too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		Internal(c, errcode.SystemError, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	_ = src.Close()
	if err != nil {
		Internal(c, errcode.SystemError, "failed to read file")
		return
	}
	if int64(len(data)) > limit {
		Error(c, http.StatusRequestEntityTooLarge, errcode.Validation, "File too large")
		return
	}

	if h.Scanner != nil {
		clean, err := h.Scanner.Scan(bytes.NewReader(data))
		if err != nil {
			log.Error("scan file", slog.Any("error", err))
			Internal(c, errcode.SystemError, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	name := uploadName(file.Filename)
	info, err := h.Uploads.Save(c.Request.Context(), name, bytes.NewReader(data), int64(len(data)), "")
	if err != nil {
		log.Error("store upload failed", slog.Any("error", err))
		Internal(c, errcode.SystemError, "failed to store file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "filename": info.Name, "size": info.Size})
}

func uploadName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := resume.SanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "upload"
	}
	ext = resume.SanitizeName(ext)
	if ext != "" {
		ext = "." + ext
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "_" + stem + ext
}
