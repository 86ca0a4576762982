package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aiResume/internal/metrics"
	"aiResume/internal/storage"
)

// Format is an export file type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string { return storage.ContentTypeFor("x" + f.Extension()) }

// ErrInvalidJob marks requests rejected before any rendering.
var ErrInvalidJob = errors.New("invalid export request")

// Job is one export request. Filename is a base name without extension.
type Job struct {
	Content  string
	Filename string
}

// Result describes a stored export.
type Result struct {
	Filename string
	FilePath string
	Size     int64
}

// Service renders jobs and hands complete files to the store.
type Service struct {
	store    storage.Store
	renderer Renderer
	timeout  time.Duration
	logger   *slog.Logger
}

func NewService(store storage.Store, renderer Renderer, pdfTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, renderer: renderer, timeout: pdfTimeout, logger: logger}
}

// ValidateJob checks content and filename without rendering anything.
func ValidateJob(job Job, format Format) (string, error) {
	if strings.TrimSpace(job.Content) == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidJob)
	}
	base := strings.TrimSpace(job.Filename)
	if base == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidJob)
	}
	name := base + format.Extension()
	if !storage.ValidName(name) {
		return "", fmt.Errorf("%w: filename %q is not allowed", ErrInvalidJob, base)
	}
	return name, nil
}

// ExportPDF prints the wrapped content in a headless browser and stores <filename>.pdf.
func (s *Service) ExportPDF(ctx context.Context, job Job) (Result, error) {
	return s.export(ctx, job, FormatPDF, func(ctx context.Context) ([]byte, error) {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		return s.renderer.RenderPDF(ctx, WrapHTML(job.Content))
	})
}

// ExportDOCX strips the markup and stores <filename>.docx.
func (s *Service) ExportDOCX(ctx context.Context, job Job) (Result, error) {
	return s.export(ctx, job, FormatDOCX, func(context.Context) ([]byte, error) {
		return BuildDOCX(StripTags(job.Content))
	})
}

func (s *Service) export(ctx context.Context, job Job, format Format, render func(context.Context) ([]byte, error)) (res Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveExport(string(format), err, time.Since(start))
	}()

	name, err := ValidateJob(job, format)
	if err != nil {
		return Result{}, err
	}

	data, err := render(ctx)
	if err != nil {
		s.logger.Error("render export failed", slog.String("format", string(format)), slog.String("file", name), slog.Any("error", err))
		return Result{}, fmt.Errorf("render %s: %w", format, err)
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("render %s: empty output", format)
	}

	info, err := s.store.Save(ctx, name, bytes.NewReader(data), int64(len(data)), format.ContentType())
	if err != nil {
		s.logger.Error("store export failed", slog.String("file", name), slog.Any("error", err))
		return Result{}, fmt.Errorf("store %s: %w", name, err)
	}

	s.logger.Info("export stored",
		slog.String("format", string(format)),
		slog.String("file", name),
		slog.Int64("size", info.Size),
		slog.Duration("duration", time.Since(start)),
	)
	return Result{Filename: name, FilePath: s.store.Path(name), Size: info.Size}, nil
}
