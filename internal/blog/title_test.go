package blog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain", content: "My Trip\n\nBody text", want: "My Trip"},
		{name: "heading", content: "# Learning Go Fast\n\nIntro...", want: "Learning Go Fast"},
		{name: "bold", content: "**Why I Run**\n\nBecause.", want: "Why I Run"},
		{name: "title prefix", content: "Title: Ten Lessons\n\nOne.", want: "Ten Lessons"},
		{name: "quoted", content: "\"Remote Work Tips\"\n\n...", want: "Remote Work Tips"},
		{name: "leading blank lines", content: "\n\n## Morning Routines\n\ntext", want: "Morning Routines"},
		{name: "no blank line", content: "# Single\nline two\nline three", want: "Single"},
		{name: "crlf", content: "Windows Title\r\n\r\nBody", want: "Windows Title"},
		{name: "only markup head", content: "#\n\nActual start", want: "Actual start"},
		{name: "empty", content: "   ", want: "Untitled"},
		{name: "only markup", content: "###\n\n**", want: "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestExtractTitleTruncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := ExtractTitle(long + "\n\nbody")
	assert.Equal(t, 200, len([]rune(got)))
}

func TestJoinPosts(t *testing.T) {
	assert.Equal(t, "", JoinPosts(nil))
	assert.Equal(t, "a\n\nb\n\nc", JoinPosts([]string{"a", "b", "c"}))
}
