package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGeminiGenerate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"skills\":"},{"text":"[]}"}]}}]}`)
	}))
	defer srv.Close()

	g := NewGemini(GeminiOptions{BaseURL: srv.URL, APIKey: "secret", Model: "gemini-2.5-flash", Timeout: time.Second})
	text, err := g.Generate(context.Background(), Request{
		Messages: []Message{
			Text(RoleSystem, "be strict"),
			{Role: RoleUser, Parts: []Part{{Text: "look"}, Image("image/png", []byte{1, 2, 3})}},
		},
		JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"skills":[]}`, text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be strict", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	require.NotNil(t, got.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "AQID", got.Contents[0].Parts[1].InlineData.Data)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
}

func TestGeminiWithoutKeyFails(t *testing.T) {
	g := NewGemini(GeminiOptions{Model: "m", Timeout: time.Second})
	_, err := g.Generate(context.Background(), Request{Messages: []Message{Text(RoleUser, "hi")}})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini(GeminiOptions{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := g.Generate(context.Background(), Request{Messages: []Message{Text(RoleUser, "hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, s := range []string{"Hel", "lo", " world"} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", s)
		}
	}))
	defer srv.Close()

	g := NewGemini(GeminiOptions{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	var fragments []string
	err := g.Stream(context.Background(), []Message{Text(RoleUser, "hi")}, func(s string) error {
		fragments = append(fragments, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", " world"}, fragments)
}

func TestOllamaGenerateAndStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma3n", req.Model)
		if !req.Stream {
			assert.Equal(t, "json", req.Format)
			_, _ = io.WriteString(w, `{"message":{"role":"assistant","content":"{}"},"done":true}`)
			return
		}
		_, _ = io.WriteString(w, "{\"message\":{\"content\":\"a\"},\"done\":false}\n{\"message\":{\"content\":\" b\"},\"done\":false}\n{\"message\":{\"content\":\"\"},\"done\":true}\n")
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "gemma3n", time.Second)
	text, err := o.Generate(context.Background(), Request{Messages: []Message{Text(RoleUser, "x")}, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	var fragments []string
	require.NoError(t, o.Stream(context.Background(), []Message{Text(RoleUser, "x")}, func(s string) error {
		fragments = append(fragments, s)
		return nil
	}))
	assert.Equal(t, []string{"a", " b"}, fragments)
}

type scripted struct {
	name      string
	text      string
	fragments []string
	failAfter int
	err       error
	calls     int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Generate(context.Context, Request) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *scripted) Stream(_ context.Context, _ []Message, emit func(string) error) error {
	s.calls++
	for i, f := range s.fragments {
		if s.err != nil && i == s.failAfter {
			return s.err
		}
		if err := emit(f); err != nil {
			return err
		}
	}
	return s.err
}

func TestFallbackGenerate(t *testing.T) {
	primary := &scripted{name: "p", err: errors.New("down")}
	secondary := &scripted{name: "s", text: "local"}

	text, err := NewFallback(primary, secondary, quietLogger()).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "local", text)

	primary.err = nil
	primary.text = "remote"
	text, err = NewFallback(primary, secondary, quietLogger()).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "remote", text)
}

func TestFallbackStreamOnlyBeforeFirstFragment(t *testing.T) {
	t.Run("fails before output", func(t *testing.T) {
		primary := &scripted{name: "p", err: errors.New("down")}
		secondary := &scripted{name: "s", fragments: []string{"ok"}}
		var got []string
		err := NewFallback(primary, secondary, quietLogger()).Stream(context.Background(), nil, func(s string) error {
			got = append(got, s)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, got)
	})

	t.Run("fails mid stream", func(t *testing.T) {
		primary := &scripted{name: "p", fragments: []string{"half", "never"}, failAfter: 1, err: errors.New("reset")}
		secondary := &scripted{name: "s", fragments: []string{"ok"}}
		var got []string
		err := NewFallback(primary, secondary, quietLogger()).Stream(context.Background(), nil, func(s string) error {
			got = append(got, s)
			return nil
		})
		require.Error(t, err)
		assert.Equal(t, []string{"half"}, got)
		assert.Zero(t, secondary.calls)
	})

	t.Run("both fail", func(t *testing.T) {
		primary := &scripted{name: "p", err: errors.New("remote down")}
		secondary := &scripted{name: "s", err: errors.New("local down")}
		err := NewFallback(primary, secondary, quietLogger()).Stream(context.Background(), nil, func(string) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "remote down")
		assert.Contains(t, err.Error(), "local down")
	})
}

func TestStripJSON(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                         `{"a":1}`,
		"```json\n{\"a\":1}\n```":         `{"a":1}`,
		"```\n{\"a\":1}\n```":             `{"a":1}`,
		"Here you go:\n{\"a\":1}\nThanks": `{"a":1}`,
		"no json here":                    "no json here",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripJSON(in))
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "<html></html>", StripHTML("```html\n<html></html>\n```"))
	assert.Equal(t, "<html></html>", StripHTML("```HTML\n<html></html>```"))
	assert.Equal(t, "<p>x</p>", StripHTML("Sure:\n```\n<p>x</p>\n```\nDone"))
	assert.Equal(t, "<p>plain</p>", StripHTML("  <p>plain</p>\n"))
}

func TestPartDataURI(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,AQID", Image("image/jpeg", []byte{1, 2, 3}).DataURI())
}

func TestStreamOutlivesOracleTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for _, word := range []string{"slow", " but", " complete"} {
			time.Sleep(80 * time.Millisecond)
			_, _ = fmt.Fprintf(w, "{\"message\":{\"content\":%q},\"done\":false}\n", word)
			flusher.Flush()
		}
		_, _ = io.WriteString(w, `{"done":true}`+"\n")
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "gemma3n", 100*time.Millisecond)
	var got []string
	err := o.Stream(context.Background(), []Message{Text(RoleUser, "hi")}, func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", " but", " complete"}, got)
}

func TestGenerateHonoursOracleTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "gemma3n", 100*time.Millisecond)
	start := time.Now()
	_, err := o.Generate(context.Background(), Request{Messages: []Message{Text(RoleUser, "hi")}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	g := NewGemini(GeminiOptions{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: 100 * time.Millisecond})
	start = time.Now()
	_, err = g.Generate(context.Background(), Request{Messages: []Message{Text(RoleUser, "hi")}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
