package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini 通过 REST 接口调用 Google Gemini。
type Gemini struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	http    *http.Client
}

type GeminiOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewGemini(opts GeminiOptions) *Gemini {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}
	return &Gemini{
		baseURL: base,
		apiKey:  opts.APIKey,
		model:   opts.Model,
		timeout: opts.Timeout,
		http:    newHTTPClient(opts.Timeout),
	}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func buildGeminiRequest(messages []Message, jsonOutput bool) geminiRequest {
	var req geminiRequest
	var system []geminiPart
	for _, m := range messages {
		parts := make([]geminiPart, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.IsImage() {
				parts = append(parts, geminiPart{InlineData: &geminiInlineData{
					MIMEType: p.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(p.Data),
				}})
				continue
			}
			parts = append(parts, geminiPart{Text: p.Text})
		}
		switch m.Role {
		case RoleSystem:
			system = append(system, parts...)
		case RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: parts})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: parts})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: system}
	}
	if jsonOutput {
		req.GenerationConfig = &geminiGenerationConfig{ResponseMIMEType: "application/json"}
	}
	return req
}

func (g *Gemini) post(ctx context.Context, method string, query url.Values, body geminiRequest) (*http.Response, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: GEMINI_API_KEY is not set", ErrNoProvider)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:%s", g.baseURL, url.PathEscape(g.model), method)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withCallTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.post(ctx, "generateContent", nil, buildGeminiRequest(req.Messages, req.JSON))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	text := out.text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}

// Stream 使用 streamGenerateContent 的 SSE 模式，每个 data 帧推送一次片段。
func (g *Gemini) Stream(ctx context.Context, messages []Message, emit func(string) error) error {
	resp, err := g.post(ctx, "streamGenerateContent", url.Values{"alt": {"sse"}}, buildGeminiRequest(messages, false))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}
		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("gemini: decode stream chunk: %w", err)
		}
		if text := chunk.text(); text != "" {
			if err := emit(text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gemini: read stream: %w", err)
	}
	return nil
}
