package blog

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleRunes = 200
	untitled      = "Untitled"
)

// ExtractTitle takes the title from the text before the first blank line.
// Markdown heading markers, emphasis and quotes are stripped. If that
// leaves nothing, the first non-empty line of the whole post is used.
func ExtractTitle(content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))

	head, _, _ := strings.Cut(content, "\n\n")
	if title := firstLine(head); title != "" {
		return truncate(title)
	}
	if title := firstLine(content); title != "" {
		return truncate(title)
	}
	return untitled
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if title := cleanTitle(line); title != "" {
			return title
		}
	}
	return ""
}

func cleanTitle(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimLeft(s, "#"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "Title:"))
	s = strings.TrimSpace(strings.Trim(s, "*_"))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	return s
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:maxTitleRunes]))
}
