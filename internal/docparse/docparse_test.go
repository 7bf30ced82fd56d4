package docparse

import (
	"bytes"
	"testing"

	"baliance.com/gooxml/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported("cv.PDF"))
	assert.True(t, Supported("cv.docx"))
	assert.True(t, Supported("notes.txt"))
	assert.False(t, Supported("cv.doc"))
	assert.False(t, Supported("cv"))
}

func TestTextPlain(t *testing.T) {
	text, err := Text("cv.txt", []byte("  Jane Doe\nGo developer \n"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer", text)
}

func TestTextRejectsUnknownExtension(t *testing.T) {
	_, err := Text("cv.exe", []byte("MZ"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	_, err := PDFText([]byte("definitely not a pdf"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDOCXText(t *testing.T) {
	doc := document.New()
	doc.AddParagraph().AddRun().AddText("Jane Doe")
	para := doc.AddParagraph()
	para.AddRun().AddText("Skills: ")
	para.AddRun().AddText("Go, SQL")

	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))

	text, err := Text("resume.docx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go, SQL", text)
}
