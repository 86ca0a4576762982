package api

import (
	"context"

	"aiResume/internal/drafts"
	"aiResume/internal/export"
	"aiResume/internal/storage"
)

// Generator produces document HTML for a prompt. Configured reports whether a usable
// credential is present right now.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Exporter renders and stores export jobs.
type Exporter interface {
	ExportPDF(ctx context.Context, job export.Job) (export.Result, error)
	ExportDOCX(ctx context.Context, job export.Job) (export.Result, error)
}

// CleanupScheduler arranges deletion of an exported file after the retention period.
type CleanupScheduler interface {
	Schedule(ctx context.Context, filename, correlationID string) error
}

// Handler 汇总所有 HTTP 处理器依赖。
type Handler struct {
	Generator Generator
	Exporter  Exporter
	Generated storage.Store
	Uploads   storage.Store
	Drafts    drafts.Store
	// Cleanup may be nil when retention is disabled.
	Cleanup        CleanupScheduler
	Scanner        VirusScanner
	MaxUploadBytes int64
}
