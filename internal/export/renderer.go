package export

import (
	"context"
	"fmt"
	"log/slog"
)

// Renderer turns a complete HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, htmlDoc string) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, htmlDoc string) ([]byte, error)

func (f RendererFunc) RenderPDF(ctx context.Context, htmlDoc string) ([]byte, error) {
	return f(ctx, htmlDoc)
}

// A4 portrait with one inch margins on every side, in inches.
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 1.0
)

// fontsReadyScript resolves once web fonts are loaded, or after 3s at most.
const fontsReadyScript = `() => {
  if (document && document.fonts && document.fonts.ready) {
    return Promise.race([
      document.fonts.ready.then(() => true),
      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
    ]);
  }
  return true;
}`

// NewRenderer selects the browser driver by engine name ("rod" or "chromedp").
func NewRenderer(engine, chromePath string, logger *slog.Logger) (Renderer, error) {
	switch engine {
	case "", "rod":
		return NewRodRenderer(chromePath, logger), nil
	case "chromedp":
		return NewChromedpRenderer(chromePath, logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", engine)
	}
}

func float64Ptr(value float64) *float64 {
	return &value
}
