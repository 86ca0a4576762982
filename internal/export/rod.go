package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodRenderer 使用 go-rod 在无头浏览器中渲染 HTML 并返回 PDF 字节。
// 每次调用都会启动并销毁独立的浏览器进程。
type RodRenderer struct {
	chromePath string
	logger     *slog.Logger
}

func NewRodRenderer(chromePath string, logger *slog.Logger) *RodRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RodRenderer{chromePath: chromePath, logger: logger}
}

func (r *RodRenderer) RenderPDF(ctx context.Context, htmlDoc string) ([]byte, error) {
	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if r.chromePath != "" {
		launch = launch.Bin(r.chromePath)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		launch.Cleanup()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	waitNetworkIdle := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	if err := page.SetDocumentContent(htmlDoc); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	waitNetworkIdle()

	if _, evalErr := page.Timeout(5 * time.Second).Eval(fontsReadyScript); evalErr != nil {
		r.logger.Warn("document.fonts.ready wait failed, continue", slog.Any("error", evalErr))
	}
	if err := page.WaitIdle(2 * time.Second); err != nil {
		r.logger.Warn("page idle wait failed, continue", slog.Any("error", err))
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      float64Ptr(paperWidthIn),
		PaperHeight:     float64Ptr(paperHeightIn),
		MarginTop:       float64Ptr(marginIn),
		MarginBottom:    float64Ptr(marginIn),
		MarginLeft:      float64Ptr(marginIn),
		MarginRight:     float64Ptr(marginIn),
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}
