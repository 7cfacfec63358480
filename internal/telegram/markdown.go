package telegram

import (
	"strings"
)

// SplitMessage cuts text into chunks of at most maxLen runes. A chunk ends
// after the last newline in its second half when there is one, otherwise
// after the last space, otherwise exactly at maxLen.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(runes) > maxLen {
		cut := breakPoint(runes[:maxLen])
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func breakPoint(chunk []rune) int {
	half := len(chunk) / 2
	for _, sep := range []rune{'\n', ' '} {
		for i := len(chunk) - 1; i > half; i-- {
			if chunk[i] == sep {
				return i + 1
			}
		}
	}
	return len(chunk)
}

// IsBalancedMarkdown reports whether code fences and inline code spans are
// closed. Telegram rejects Markdown messages where they are not.
func IsBalancedMarkdown(text string) bool {
	if strings.Count(text, "```")%2 != 0 {
		return false
	}
	inFence := false
	ticks := 0
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			inFence = !inFence
			i += 2
			continue
		}
		if !inFence && text[i] == '`' {
			ticks++
		}
	}
	return ticks%2 == 0
}

// FixMarkdown closes an unterminated code fence and any inline code span left
// open outside fences.
func FixMarkdown(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		text += "\n```"
	}

	var b strings.Builder
	b.Grow(len(text) + 1)
	inFence, inCode := false, false
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			if inCode {
				b.WriteByte('`')
				inCode = false
			}
			inFence = !inFence
			b.WriteString("```")
			i += 2
			continue
		}
		if !inFence && text[i] == '`' {
			inCode = !inCode
		}
		b.WriteByte(text[i])
	}
	if inCode {
		b.WriteByte('`')
	}
	return b.String()
}
