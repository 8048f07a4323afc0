package notification

import (
	"strings"
	"unicode/utf8"

	"feeltrack/internal/model"
)

const aiExcerptLen = 100

// Summarize renders messages (oldest first) as the conversation digest fed to the
// supportive-message prompt.
func Summarize(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.IsUser {
			b.WriteString("User: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
			if m.PositiveReframe != nil && *m.PositiveReframe != "" {
				b.WriteString("Positive reframe: ")
				b.WriteString(*m.PositiveReframe)
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString("AI: ")
		b.WriteString(excerpt(m.Content, aiExcerptLen))
		b.WriteString("...\n")
	}
	return b.String()
}

// excerpt returns the first n characters of s without splitting a multi-byte rune.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
