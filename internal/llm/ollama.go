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
	"strings"
	"time"
)

// Ollama 调用本地 Ollama 服务的 /api/chat 接口。
type Ollama struct {
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
}

func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		http:    newHTTPClient(timeout),
	}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

func buildOllamaMessages(messages []Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages))
	for _, m := range messages {
		om := ollamaMessage{Role: string(m.Role)}
		var sb strings.Builder
		for _, p := range m.Parts {
			if p.IsImage() {
				om.Images = append(om.Images, base64.StdEncoding.EncodeToString(p.Data))
				continue
			}
			sb.WriteString(p.Text)
		}
		om.Content = sb.String()
		out = append(out, om)
	}
	return out
}

func (o *Ollama) post(ctx context.Context, body ollamaRequest) (*http.Response, error) {
	if o.baseURL == "" {
		return nil, fmt.Errorf("ollama: %w", ErrNoProvider)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withCallTimeout(ctx, o.timeout)
	defer cancel()

	body := ollamaRequest{Model: o.model, Messages: buildOllamaMessages(req.Messages)}
	if req.JSON {
		body.Format = "json"
	}
	resp, err := o.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	if out.Message.Content == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return out.Message.Content, nil
}

// Stream 读取按行分隔的 JSON 帧，直到 done。
func (o *Ollama) Stream(ctx context.Context, messages []Message, emit func(string) error) error {
	resp, err := o.post(ctx, ollamaRequest{Model: o.model, Messages: buildOllamaMessages(messages), Stream: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("ollama: decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama: %s", chunk.Error)
		}
		if chunk.Message.Content != "" {
			if err := emit(chunk.Message.Content); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ollama: read stream: %w", err)
	}
	return nil
}
