package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpConverter 通过 chromedp 驱动 Chrome 打印 PDF。
type ChromedpConverter struct {
	chromePath string
	timeout    time.Duration
}

func (c *ChromedpConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, WithPrintCSS(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = chromedpPrintParams(A4).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp print: %w", err)
	}
	return buf, nil
}

func chromedpPrintParams(s Settings) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(s.PrintBackground).
		WithPreferCSSPageSize(true).
		WithPaperWidth(s.PaperWidth).
		WithPaperHeight(s.PaperHeight).
		WithMarginTop(s.Margin).
		WithMarginBottom(s.Margin).
		WithMarginLeft(s.Margin).
		WithMarginRight(s.Margin)
}
