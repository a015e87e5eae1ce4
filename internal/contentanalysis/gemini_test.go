package contentanalysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
	wait   time.Duration
}

func (f *fakeGenerator) generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"IsAccepted":true}`, `{"IsAccepted":true}`},
		{"```json\n{\"IsAccepted\":true}\n```", `{"IsAccepted":true}`},
		{"```\n{\"IsAccepted\":false}\n```  ", `{"IsAccepted":false}`},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in))
	}
}

func TestParseVerdict(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		r := parseVerdict(`{"IsAccepted": true, "Reason": "fine"}`)
		assert.Equal(t, Result{Success: true, IsAccepted: true, Reason: "fine"}, r)
	})

	t.Run("rejected in a code fence", func(t *testing.T) {
		r := parseVerdict("```json\n{\"IsAccepted\": false, \"Reason\": \" insults \"}\n```")
		assert.True(t, r.Success)
		assert.False(t, r.IsAccepted)
		assert.Equal(t, "insults", r.Reason)
	})

	t.Run("garbage", func(t *testing.T) {
		r := parseVerdict("I think this is fine")
		assert.False(t, r.Success)
		assert.Contains(t, r.ErrorMessage, "unreadable")
	})

	t.Run("empty", func(t *testing.T) {
		r := parseVerdict("")
		assert.False(t, r.Success)
		assert.NotEmpty(t, r.ErrorMessage)
	})

	t.Run("long reason is truncated", func(t *testing.T) {
		reason := strings.Repeat("é", maxReasonRunes+50)
		r := parseVerdict(`{"IsAccepted": false, "Reason": "` + reason + `"}`)
		assert.Len(t, []rune(r.Reason), maxReasonRunes)
	})
}

func TestGeminiAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("prompt carries the text", func(t *testing.T) {
		gen := &fakeGenerator{reply: `{"IsAccepted": true, "Reason": ""}`}
		a := &GeminiAnalyzer{gen: gen}

		r := a.Analyze(ctx, "hello there")
		assert.True(t, r.Success)
		assert.True(t, r.IsAccepted)
		assert.Contains(t, gen.prompt, "hello there")
	})

	t.Run("transport error", func(t *testing.T) {
		a := &GeminiAnalyzer{gen: &fakeGenerator{err: errors.New("connection refused")}}

		r := a.Analyze(ctx, "hello")
		assert.False(t, r.Success)
		assert.Equal(t, "connection refused", r.ErrorMessage)
	})

	t.Run("timeout", func(t *testing.T) {
		a := &GeminiAnalyzer{gen: &fakeGenerator{wait: time.Second}, timeout: 10 * time.Millisecond}

		r := a.Analyze(ctx, "hello")
		require.False(t, r.Success)
		assert.Contains(t, r.ErrorMessage, "deadline")
	})
}
