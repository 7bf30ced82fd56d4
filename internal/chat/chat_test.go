package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
)

func TestWindowKeepsLastSix(t *testing.T) {
	var history []llm.Message
	for i := 0; i < 10; i++ {
		history = append(history, llm.Text(llm.RoleUser, fmt.Sprint(i)))
	}

	got := Window(history, DefaultWindow)
	require.Len(t, got, 6)
	for i, m := range got {
		assert.Equal(t, fmt.Sprint(i+4), m.PlainText())
	}

	assert.Len(t, Window(history[:3], DefaultWindow), 3)
}

func TestCoalescer(t *testing.T) {
	var words []string
	co := NewCoalescer(func(w string) error {
		words = append(words, w)
		return nil
	})
	for _, f := range []string{"Hel", "lo", " wor", "ld", "!", "", " Bye"} {
		require.NoError(t, co.Push(f))
	}
	assert.Equal(t, []string{"Hello"}, words)
	require.NoError(t, co.Flush())
	assert.Equal(t, []string{"Hello", " world!", " Bye"}, words)

	require.NoError(t, co.Flush())
	assert.Len(t, words, 3)
}

type fakeStreamer struct {
	fragments []string
	err       error
	seen      [][]llm.Message
}

func (f *fakeStreamer) Stream(_ context.Context, messages []llm.Message, emit func(string) error) error {
	f.seen = append(f.seen, messages)
	for _, fr := range f.fragments {
		if err := emit(fr); err != nil {
			return err
		}
	}
	return f.err
}

func TestSessionForwardsWindowAndRecordsReplies(t *testing.T) {
	oracle := &fakeStreamer{fragments: []string{"ok", " sure"}}
	s := NewSession("1", oracle, 0)

	for i := 0; i < 5; i++ {
		var words []string
		require.NoError(t, s.Reply(context.Background(), fmt.Sprintf("msg %d", i), func(w string) error {
			words = append(words, w)
			return nil
		}))
		assert.Equal(t, []string{"ok", " sure"}, words)
	}

	assert.Len(t, s.Transcript(), 10)
	last := oracle.seen[len(oracle.seen)-1]
	require.Len(t, last, 6)
	assert.Equal(t, llm.RoleAssistant, last[0].Role)
	assert.Equal(t, "ok sure", last[0].PlainText())
	assert.Equal(t, "msg 2", last[1].PlainText())
	assert.Equal(t, "msg 4", last[5].PlainText())
}

func TestSessionErrorKeepsUserMessage(t *testing.T) {
	oracle := &fakeStreamer{fragments: []string{"par"}, err: errors.New("stream reset")}
	s := NewSession("1", oracle, 6)

	var words []string
	err := s.Reply(context.Background(), "hello", func(w string) error {
		words = append(words, w)
		return nil
	})
	require.Error(t, err)
	assert.Empty(t, words)
	require.Len(t, s.Transcript(), 1)
	assert.Equal(t, llm.RoleUser, s.Transcript()[0].Role)
}
