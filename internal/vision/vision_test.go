package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
)

type stubOracle struct {
	reply string
	err   error
	last  llm.Request
}

func (s *stubOracle) Generate(_ context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "image/png", ImageType("layout.png"))
	assert.Equal(t, "image/jpeg", ImageType("layout.JPG"))
	assert.Equal(t, "image/jpeg", ImageType("layout.jpeg"))
	assert.Equal(t, "image/webp", ImageType("layout.webp"))
	assert.Equal(t, DefaultImageType, ImageType("layout"))
	assert.Equal(t, DefaultImageType, ImageType("layout.unknownext"))
	assert.Equal(t, DefaultImageType, ImageType("layout.html"))
}

func TestRenderStripsFence(t *testing.T) {
	oracle := &stubOracle{reply: "Here it is\n```html\n<!DOCTYPE html><html><body>Jane</body></html>\n```"}
	html, err := New(oracle).Render(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "ref.jpg", []byte(`{"name":"Jane"}`))
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html><body>Jane</body></html>", html)

	require.Len(t, oracle.last.Messages, 2)
	user := oracle.last.Messages[1]
	require.Len(t, user.Parts, 2)
	assert.Contains(t, user.Parts[0].Text, `{"name":"Jane"}`)
	assert.True(t, user.Parts[1].IsImage())
	assert.Equal(t, "image/jpeg", user.Parts[1].MIMEType)
}

func TestRenderUnfencedResponse(t *testing.T) {
	html, err := New(&stubOracle{reply: "  <html>ok</html>\n"}).Render(context.Background(), []byte{1}, "a.png", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
}

func TestRenderErrors(t *testing.T) {
	_, err := New(&stubOracle{err: errors.New("503")}).Render(context.Background(), []byte{1}, "a.png", []byte(`{}`))
	assert.ErrorIs(t, err, apperror.ErrAdapter)

	_, err = New(&stubOracle{reply: "   "}).Render(context.Background(), []byte{1}, "a.png", []byte(`{}`))
	assert.ErrorIs(t, err, apperror.ErrAdapter)

	_, err = New(&stubOracle{}).Render(context.Background(), nil, "a.png", []byte(`{}`))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
