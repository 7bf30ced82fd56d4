package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodConverter 使用 go-rod 在无头浏览器中渲染 HTML。
type RodConverter struct {
	chromePath string
	timeout    time.Duration
}

func (c *RodConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	launch := launcher.New().
		Headless(true).
		NoSandbox(true).
		Context(ctx)

	if c.chromePath != "" {
		launch = launch.Bin(c.chromePath)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
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

	page, err := browser.Timeout(c.timeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(c.timeout)
	if err := page.SetDocumentContent(WithPrintCSS(html)); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	reader, err := page.PDF(rodPrintOptions(A4))
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

func rodPrintOptions(s Settings) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PrintBackground:   s.PrintBackground,
		PreferCSSPageSize: true,
		PaperWidth:        &s.PaperWidth,
		PaperHeight:       &s.PaperHeight,
		MarginTop:         &s.Margin,
		MarginBottom:      &s.Margin,
		MarginLeft:        &s.Margin,
		MarginRight:       &s.Margin,
	}
}
