// Package pdf 把 HTML 文档打印为 A4 PDF。
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PrintCSS 固定的打印样式：A4、1.5cm 页边距、内容宽度不超过容器。
const PrintCSS = `@page { size: A4; margin: 1.5cm; }
body { margin: 0 auto; box-sizing: border-box; }
* { max-width: 100%; box-sizing: border-box; }`

// Settings 是传给浏览器的打印参数，单位为英寸。
type Settings struct {
	PaperWidth      float64
	PaperHeight     float64
	Margin          float64
	PrintBackground bool
}

// A4 对应 210mm x 297mm，页边距 1.5cm。
var A4 = Settings{
	PaperWidth:      8.27,
	PaperHeight:     11.69,
	Margin:          1.5 / 2.54,
	PrintBackground: true,
}

// Converter 把 HTML 转换为 PDF 字节。
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

type Options struct {
	Engine     string
	ChromePath string
	Timeout    time.Duration
}

// New 按引擎名称返回对应的实现。
func New(opts Options) (Converter, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	switch opts.Engine {
	case "", "rod":
		return &RodConverter{chromePath: opts.ChromePath, timeout: opts.Timeout}, nil
	case "chromedp":
		return &ChromedpConverter{chromePath: opts.ChromePath, timeout: opts.Timeout}, nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", opts.Engine)
	}
}

// WithPrintCSS 把打印样式注入到 HTML 的 head 中，没有 head 时放在文档最前面。
func WithPrintCSS(html string) string {
	style := "<style>" + PrintCSS + "</style>"
	lower := strings.ToLower(html)
	if i := strings.Index(lower, "</head>"); i >= 0 {
		return html[:i] + style + html[i:]
	}
	return style + html
}
