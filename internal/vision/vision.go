// Package vision 根据参考图片和简历 JSON 让多模态模型生成 HTML 简历。
package vision

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
)

const systemInstruction = `You are a resume layout generator.
You will be given:
1) A screenshot or photo of a resume layout.
2) A JSON object containing resume data.

Your job:
- Produce a single complete HTML document (<!DOCTYPE html> ... </html>) for an A4-sized resume that visually follows the look and structure of the image.
- Use INLINE CSS only (no external CSS, no JS, no external fonts).
- Fill the content strictly from the provided JSON data (do not hallucinate). If a field is missing, skip it gracefully.
- Optimize for print (A4): small margins (e.g., 1.5cm), consistent typography, clear hierarchy, balanced use of whitespace.
- Mobile/desktop preview is not required; target print quality.
- Return HTML only. No explanations.`

const humanTemplate = "Use the following resume JSON to populate the template:\n\n%s\n\n" +
	"Now generate the full inline-CSS HTML for an A4 resume that matches the look of the attached image."

// DefaultImageType 在无法从扩展名推断时使用。
const DefaultImageType = "image/png"

type Renderer struct {
	oracle llm.Generator
}

func New(oracle llm.Generator) *Renderer {
	return &Renderer{oracle: oracle}
}

// ImageType 由文件扩展名推断图片 MIME 类型。
func ImageType(filename string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if t == "" {
		return DefaultImageType
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	if !strings.HasPrefix(t, "image/") {
		return DefaultImageType
	}
	return t
}

// Render 返回模型生成的完整 HTML 文档。
func (r *Renderer) Render(ctx context.Context, image []byte, filename string, resumeJSON []byte) (string, error) {
	if len(image) == 0 {
		return "", apperror.Validation("reference image is empty")
	}
	req := llm.Request{
		Messages: []llm.Message{
			llm.Text(llm.RoleSystem, systemInstruction),
			{
				Role: llm.RoleUser,
				Parts: []llm.Part{
					{Text: fmt.Sprintf(humanTemplate, resumeJSON)},
					llm.Image(ImageType(filename), image),
				},
			},
		},
	}
	out, err := r.oracle.Generate(ctx, req)
	if err != nil {
		return "", apperror.Adapter("html generation failed", err)
	}
	html := llm.StripHTML(out)
	if html == "" {
		return "", apperror.Adapter("html generation failed", llm.ErrEmptyResponse)
	}
	return html, nil
}
