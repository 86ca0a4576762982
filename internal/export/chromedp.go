package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromedpRenderer prints PDFs through chromedp. A fresh browser is allocated per call.
type ChromedpRenderer struct {
	chromePath string
	logger     *slog.Logger
}

func NewChromedpRenderer(chromePath string, logger *slog.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpRenderer{chromePath: chromePath, logger: logger}
}

func (r *ChromedpRenderer) RenderPDF(ctx context.Context, htmlDoc string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var (
		pdfBuf []byte
		loaded bool
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, &loaded, chromedp.WithPollingTimeout(10*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	var fontsReady bool
	fontsCtx, cancelFonts := context.WithTimeout(browserCtx, 5*time.Second)
	if err := chromedp.Run(fontsCtx, chromedp.Evaluate("("+fontsReadyScript+")()", &fontsReady, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	})); err != nil {
		r.logger.Warn("document.fonts.ready wait failed, continue", slog.Any("error", err))
	}
	cancelFonts()

	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfBuf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(paperWidthIn).
			WithPaperHeight(paperHeightIn).
			WithMarginTop(marginIn).
			WithMarginBottom(marginIn).
			WithMarginLeft(marginIn).
			WithMarginRight(marginIn).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return pdfBuf, nil
}
