// Package chat 实现基于 websocket 的对话：短窗口记忆、流式输出按词合并。
// 这里只包含与传输无关的逻辑，连接处理见 api 包。
package chat

import (
	"context"
	"strings"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
)

// DefaultWindow 每次发给模型的历史消息条数。
const DefaultWindow = 6

// Window 返回最后 n 条消息。
func Window(history []llm.Message, n int) []llm.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// Coalescer 把模型片段合并为以空格分隔的词再发送。
// 以空格开头的片段结束上一个词并开始新词，否则追加到当前词。
type Coalescer struct {
	word strings.Builder
	emit func(string) error
}

func NewCoalescer(emit func(string) error) *Coalescer {
	return &Coalescer{emit: emit}
}

func (c *Coalescer) Push(fragment string) error {
	if fragment == "" {
		return nil
	}
	if strings.HasPrefix(fragment, " ") {
		if err := c.Flush(); err != nil {
			return err
		}
	}
	c.word.WriteString(fragment)
	return nil
}

// Flush 发送缓冲中的词（如果有）。
func (c *Coalescer) Flush() error {
	if c.word.Len() == 0 {
		return nil
	}
	w := c.word.String()
	c.word.Reset()
	return c.emit(w)
}

// StreamWords 以 messages 为上下文调用模型，并把输出按词推送给 emit，返回完整回复。
func StreamWords(ctx context.Context, oracle llm.Streamer, messages []llm.Message, emit func(string) error) (string, error) {
	var reply strings.Builder
	co := NewCoalescer(emit)
	err := oracle.Stream(ctx, messages, func(fragment string) error {
		reply.WriteString(fragment)
		return co.Push(fragment)
	})
	if err != nil {
		return reply.String(), err
	}
	return reply.String(), co.Flush()
}

// Session 保存一条连接上的完整对话记录。
type Session struct {
	ID         string
	oracle     llm.Streamer
	window     int
	transcript []llm.Message
}

func NewSession(id string, oracle llm.Streamer, window int) *Session {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Session{ID: id, oracle: oracle, window: window}
}

// Reply 记录用户消息并流式返回模型回复。成功的回复会写入对话记录。
func (s *Session) Reply(ctx context.Context, text string, emit func(string) error) error {
	s.transcript = append(s.transcript, llm.Text(llm.RoleUser, text))
	reply, err := StreamWords(ctx, s.oracle, Window(s.transcript, s.window), emit)
	if err != nil {
		return err
	}
	s.transcript = append(s.transcript, llm.Text(llm.RoleAssistant, reply))
	return nil
}

// Transcript 返回对话记录的副本。
func (s *Session) Transcript() []llm.Message {
	return append([]llm.Message(nil), s.transcript...)
}
