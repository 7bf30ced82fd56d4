package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsEngine(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &RodConverter{}, c)

	c, err = New(Options{Engine: "chromedp", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &ChromedpConverter{}, c)

	_, err = New(Options{Engine: "wkhtmltopdf"})
	assert.Error(t, err)
}

func TestWithPrintCSS(t *testing.T) {
	out := WithPrintCSS("<html><HEAD><title>x</title></HEAD><body></body></html>")
	assert.True(t, strings.HasPrefix(out, "<html><HEAD><title>x</title><style>@page"))
	assert.Contains(t, out, "size: A4; margin: 1.5cm;")
	assert.Contains(t, out, "max-width: 100%")

	bare := WithPrintCSS("<p>hi</p>")
	assert.True(t, strings.HasPrefix(bare, "<style>"))
	assert.True(t, strings.HasSuffix(bare, "<p>hi</p>"))
}

func TestA4PrintOptions(t *testing.T) {
	rodOpts := rodPrintOptions(A4)
	require.NotNil(t, rodOpts.PaperWidth)
	assert.InDelta(t, 8.27, *rodOpts.PaperWidth, 0.001)
	assert.InDelta(t, 11.69, *rodOpts.PaperHeight, 0.001)
	assert.InDelta(t, 0.5906, *rodOpts.MarginLeft, 0.001)
	assert.True(t, rodOpts.PrintBackground)

	cdp := chromedpPrintParams(A4)
	assert.InDelta(t, 8.27, cdp.PaperWidth, 0.001)
	assert.InDelta(t, 11.69, cdp.PaperHeight, 0.001)
	assert.InDelta(t, 0.5906, cdp.MarginTop, 0.001)
}
