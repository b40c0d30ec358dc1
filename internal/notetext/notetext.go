package notetext

import (
	"strings"
	"unicode/utf8"
)

const (
	byteOrderMark    = "\uFEFF"
	frontMatterFence = "---"
)

// StripFrontMatter removes a leading YAML front matter block delimited by
// "---" lines and returns the text after the closing delimiter. An optional
// byte-order mark before the opening delimiter is tolerated. When the block is
// not terminated the original text is returned unchanged, so a note that merely
// starts with a horizontal rule keeps its content.
func StripFrontMatter(text string) string {
	trimmed := strings.TrimPrefix(text, byteOrderMark)
	if !strings.HasPrefix(trimmed, frontMatterFence) {
		return text
	}

	lines := splitLines(trimmed)
	if len(lines) < 3 {
		return text
	}
	if strings.TrimSpace(lines[0]) != frontMatterFence {
		return text
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterFence {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return text
}

// TakeFirstCodePoints returns the first n Unicode code points of s, or s when
// it is shorter. It returns "" for n <= 0. The cut always lands on a rune
// boundary and the bytes before it are returned untouched.
func TakeFirstCodePoints(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// CodePointCount reports the number of code points in s.
func CodePointCount(s string) int {
	return utf8.RuneCountInString(s)
}

// splitLines splits on "\n" and drops a trailing "\r" from every line.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
