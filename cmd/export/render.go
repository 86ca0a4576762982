package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aiResume/internal/config"
	"aiResume/internal/export"
	"aiResume/internal/resume"
	"aiResume/internal/storage"
)

var (
	renderInput   string
	renderOutDir  string
	renderName    string
	renderEngine  string
	renderChrome  string
	renderTimeout time.Duration
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Render an HTML fragment to an A4 PDF",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRender(cmd.Context(), export.FormatPDF)
	},
}

var docxCmd = &cobra.Command{
	Use:   "docx",
	Short: "Convert an HTML fragment to a Word document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRender(cmd.Context(), export.FormatDOCX)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{pdfCmd, docxCmd} {
		cmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to the HTML fragment (required)")
		cmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", "generated", "Directory for the exported file")
		cmd.Flags().StringVarP(&renderName, "name", "n", "", "Base file name without extension (defaults to the input name)")
		if err := cmd.MarkFlagRequired("in"); err != nil {
			panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
		}
		rootCmd.AddCommand(cmd)
	}
	pdfCmd.Flags().StringVar(&renderEngine, "engine", "", "Browser driver: rod or chromedp (defaults to PDF_ENGINE)")
	pdfCmd.Flags().StringVar(&renderChrome, "chrome", "", "Chrome binary path (defaults to CHROME_PATH)")
	pdfCmd.Flags().DurationVar(&renderTimeout, "timeout", 0, "Render timeout (defaults to PDF_TIMEOUT)")
}

func runRender(ctx context.Context, format export.Format) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	content, err := os.ReadFile(renderInput)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	name := renderName
	if name == "" {
		base := filepath.Base(renderInput)
		name = resume.SanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	store, err := storage.NewLocalStore(renderOutDir)
	if err != nil {
		return fmt.Errorf("open output dir: %w", err)
	}

	engine, chrome, timeout := cfg.PDF.Engine, cfg.PDF.ChromePath, cfg.PDF.Timeout
	if renderEngine != "" {
		engine = renderEngine
	}
	if renderChrome != "" {
		chrome = renderChrome
	}
	if renderTimeout > 0 {
		timeout = renderTimeout
	}

	var renderer export.Renderer
	if format == export.FormatPDF {
		renderer, err = export.NewRenderer(engine, chrome, logger)
		if err != nil {
			return err
		}
	}
	svc := export.NewService(store, renderer, timeout, logger)

	job := export.Job{Content: string(content), Filename: name}
	var res export.Result
	if format == export.FormatPDF {
		res, err = svc.ExportPDF(ctx, job)
	} else {
		res, err = svc.ExportDOCX(ctx, job)
	}
	if err != nil {
		return err
	}

	logger.Debug("export finished", slog.String("file", res.FilePath))
	fmt.Printf("%s (%d bytes)\n", res.FilePath, res.Size)
	return nil
}
