package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{
			name:   "short text is one part",
			text:   "hello",
			maxLen: 10,
			want:   []string{"hello"},
		},
		{
			name:   "prefers newline in second half",
			text:   "aaaaaa\nbbbbbbbb",
			maxLen: 10,
			want:   []string{"aaaaaa\n", "bbbbbbbb"},
		},
		{
			name:   "falls back to space",
			text:   "aaaaaaa bbbbbbb",
			maxLen: 10,
			want:   []string{"aaaaaaa ", "bbbbbbb"},
		},
		{
			name:   "hard cut without separators",
			text:   "abcdefghijklmnopqrstuvwxy",
			maxLen: 10,
			want:   []string{"abcdefghij", "klmnopqrst", "uvwxy"},
		},
		{
			name:   "newline in first half is ignored",
			text:   "ab\ncdefghijklmn",
			maxLen: 10,
			want:   []string{"ab\ncdefghi", "jklmn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessage(tt.text, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, strings.Join(got, ""))
		})
	}
}

func TestSplitMessage_CountsRunes(t *testing.T) {
	text := strings.Repeat("ж", 9000)

	parts := SplitMessage(text, 4096)

	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 4096)
		assert.True(t, utf8.ValidString(p))
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced", "use `go test` here", "use `go test` here"},
		{"open fence", "```go\nfmt.Println()", "```go\nfmt.Println()\n```"},
		{"open inline", "run `go vet", "run `go vet`"},
		{"tick inside fence", "```\na ` b\n```", "```\na ` b\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixMarkdown(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsBalancedMarkdown(got))
		})
	}
}

func TestIsBalancedMarkdown(t *testing.T) {
	assert.True(t, IsBalancedMarkdown("plain"))
	assert.True(t, IsBalancedMarkdown("```\ncode\n```"))
	assert.False(t, IsBalancedMarkdown("```\ncode"))
	assert.False(t, IsBalancedMarkdown("a `b"))
}
