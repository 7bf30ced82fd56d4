// Package customizer 根据职位描述调整简历中的技能列表。
package customizer

import (
	"context"
	"fmt"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/resume"
)

const instruction = `You are a resume customization assistant.
Update ONLY the "skills" field in the resume JSON using the provided job description.
Keep all other fields unchanged.
Return valid JSON only.`

type Customizer struct {
	oracle llm.Generator
}

func New(oracle llm.Generator) *Customizer {
	return &Customizer{oracle: oracle}
}

// Customize 返回只有 skills 与原简历不同的新数据。
// 模型返回的其它字段一律丢弃，以原简历为准。
func (c *Customizer) Customize(ctx context.Context, original resume.Data, jobPost string) (resume.Data, error) {
	payload, err := original.JSON()
	if err != nil {
		return resume.Data{}, fmt.Errorf("encode resume: %w", err)
	}
	req := llm.Request{
		Messages: []llm.Message{
			llm.Text(llm.RoleSystem, instruction),
			llm.Text(llm.RoleUser, fmt.Sprintf("Resume JSON:\n%s\n\nJob Post:\n%s", payload, jobPost)),
		},
		JSON: true,
	}
	out, err := c.oracle.Generate(ctx, req)
	if err != nil {
		return resume.Data{}, apperror.Adapter("resume customization failed", err)
	}
	updated, err := resume.Parse([]byte(llm.StripJSON(out)))
	if err != nil {
		return resume.Data{}, apperror.ExtractionSchema(err)
	}
	return original.WithSkills(updated.Skills), nil
}
