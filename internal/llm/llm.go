// Package llm 封装对大模型（Gemini 与本地 Ollama）的调用。
//
// 上层只依赖 Generator / Streamer 接口，测试中可以替换为假实现。
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part 是消息中的一段内容：文本或内联图片。
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// IsImage 判断该段内容是否为图片。
func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// DataURI 返回 data:<mime>;base64,<data> 形式的图片地址。
func (p Part) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

type Message struct {
	Role  Role
	Parts []Part
}

// Text 构造纯文本消息。
func Text(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Image 构造一段图片内容。
func Image(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// PlainText 拼接消息中的所有文本段。
func (m Message) PlainText() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if !p.IsImage() {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Request 是一次非流式调用。JSON 为 true 时要求模型只输出 JSON。
type Request struct {
	Messages []Message
	JSON     bool
}

// Generator 返回一次完整的模型回复。
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Streamer 以片段形式推送模型回复；emit 返回错误时中止。
type Streamer interface {
	Stream(ctx context.Context, messages []Message, emit func(fragment string) error) error
}

// Model 同时支持两种调用方式。
type Model interface {
	Generator
	Streamer
	Name() string
}

var (
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrNoProvider    = errors.New("llm: no provider configured")
)

// newHTTPClient 不设整体超时：timeout 只约束等待响应头，
// 流式响应体的读取时长由调用方的 context 决定。
func newHTTPClient(timeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: tr}
}

// withCallTimeout 为一次非流式调用设置整体期限，timeout<=0 时不限制。
func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
