// Package extractor 调用大模型把简历文本抽取为结构化数据。
package extractor

import (
	"context"
	"strings"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/docparse"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/resume"
)

const instruction = `You are a resume information extraction agent.
Extract structured information from the resume text you are given.

name: full name of the candidate
email: email address
phone: phone number
education: list of education entries, each with degree, institution, start_date, end_date, grade (if available)
projects: list of projects, each with project_name, description, technologies (list of technologies used), link (if available)
experience: list of work experience entries, each with job_title, company, location, start_date, end_date, responsibilities (list of responsibilities/achievements)
skills: list of skills
other_info: object with optional fields:
  certifications: list of certifications (if available)
  languages: list of languages (if available)
  achievements: list of achievements (if available)
  links: object with optional fields linkedin, github, portfolio (if available)

Rules:
- Do not hallucinate. If information is not present, return null or an empty list.
- Always return JSON only, with no extra text.
- Keep field values concise but complete.

The JSON must validate against this schema:
`

type Extractor struct {
	oracle llm.Generator
}

func New(oracle llm.Generator) *Extractor {
	return &Extractor{oracle: oracle}
}

// Extract 解析文件文本后交给模型抽取。
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (resume.Data, error) {
	text, err := docparse.Text(filename, data)
	if err != nil {
		return resume.Data{}, err
	}
	return e.FromText(ctx, text)
}

// FromText 对已提取的纯文本做结构化抽取。模型输出不符合 schema 时返回 ExtractionSchema 错误。
func (e *Extractor) FromText(ctx context.Context, text string) (resume.Data, error) {
	req := llm.Request{
		Messages: []llm.Message{
			llm.Text(llm.RoleSystem, instruction+resume.SchemaJSON()),
			llm.Text(llm.RoleUser, "Extract all possible information from the following resume text: "+strings.TrimSpace(text)),
		},
		JSON: true,
	}
	out, err := e.oracle.Generate(ctx, req)
	if err != nil {
		return resume.Data{}, apperror.Adapter("resume extraction failed", err)
	}
	data, err := resume.Parse([]byte(llm.StripJSON(out)))
	if err != nil {
		return resume.Data{}, apperror.ExtractionSchema(err)
	}
	return data, nil
}
