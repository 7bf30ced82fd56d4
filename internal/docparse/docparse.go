// Package docparse 把上传的简历文件转换为纯文本。
package docparse

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"baliance.com/gooxml/document"
	"github.com/ledongthuc/pdf"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
)

// SupportedExtensions 列出可以解析的扩展名。
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

// Supported 判断文件名的扩展名是否可以解析。
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Text 按扩展名选择解析器。
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDFText(data)
	case ".docx":
		return DOCXText(data)
	case ".txt":
		return strings.TrimSpace(string(data)), nil
	default:
		return "", apperror.Validation(fmt.Sprintf("unsupported file type %q, expected one of %s",
			filepath.Ext(filename), strings.Join(SupportedExtensions, ", ")))
	}
}

// PDFText 逐页提取文本，每页后追加换行。
// 无法解码的页面按空字符串处理，不影响整个文档。
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperror.Validation("file is not a readable PDF")
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		sb.WriteString(pageText(r.Page(i)))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func pageText(p pdf.Page) (text string) {
	// 个别损坏的页面会让底层解析器 panic
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if p.V.IsNull() {
		return ""
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return s
}

// DOCXText 按段落提取 Word 文档文本。
func DOCXText(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperror.Validation("file is not a readable DOCX document")
	}

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	for _, tbl := range doc.Tables() {
		for _, row := range tbl.Rows() {
			for _, cell := range row.Cells() {
				for _, para := range cell.Paragraphs() {
					for _, run := range para.Runs() {
						sb.WriteString(run.Text())
					}
					sb.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
