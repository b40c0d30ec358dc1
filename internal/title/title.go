// Package title turns raw model output into a file basename.
package title

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/retitle/internal/notetext"
)

// Fallback is used when sanitization leaves nothing.
const Fallback = "Untitled"

var (
	labelPrefixRe = regexp.MustCompile(`(?i)^(title|标题)\s*[:：]\s*`)
	reservedRe    = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)
	illegalChars  = strings.NewReplacer(
		`\`, " ", "/", " ", ":", " ", "*", " ", "?", " ",
		`"`, " ", "<", " ", ">", " ", "|", " ",
	)
)

// wrappers are checked in order; at most one pair is removed.
var wrappers = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"`", "`"},
	{"“", "”"},
	{"‘", "’"},
	{"《", "》"},
	{"「", "」"},
	{"『", "』"},
	{"(", ")"},
	{"（", "）"},
	{"[", "]"},
	{"【", "】"},
}

// Extract picks the title candidate out of a model answer: the first line with
// visible content, without a "Title:" style label and without one layer of
// wrapping quotes or brackets.
func Extract(raw string) string {
	line := ""
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	t := labelPrefixRe.ReplaceAllString(strings.TrimSpace(line), "")
	t = stripWrapper(t)
	return strings.TrimSpace(t)
}

func stripWrapper(s string) string {
	t := strings.TrimSpace(s)
	for _, w := range wrappers {
		left, right := w[0], w[1]
		if strings.HasPrefix(t, left) && strings.HasSuffix(t, right) && len(t) >= len(left)+len(right)+1 {
			return strings.TrimSpace(t[len(left) : len(t)-len(right)])
		}
	}
	return t
}

// Sanitize converts a candidate into a single-line basename that is legal on
// common filesystems and at most maxChars code points long. It is idempotent.
// maxChars <= 0 yields "".
func Sanitize(candidate string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	t := strings.Map(func(r rune) rune {
		if r <= 0x1f || r == 0x7f {
			return -1
		}
		return r
	}, candidate)
	t = norm.NFC.String(t)
	t = illegalChars.Replace(t)
	t = strings.Join(strings.Fields(t), " ")
	t = trimTrailingDotsAndSpaces(t)
	if t == "" {
		t = Fallback
	}

	// Truncation can expose a trailing space or dot again.
	t = trimTrailingDotsAndSpaces(notetext.TakeFirstCodePoints(t, maxChars))
	if t == "" {
		t = notetext.TakeFirstCodePoints(Fallback, maxChars)
	}

	if reservedRe.MatchString(t) {
		t = notetext.TakeFirstCodePoints("_"+t, maxChars)
	}
	return t
}

// Equal reports whether two basenames name the same title once both are in
// NFC, so a decomposed name on disk matches the composed title.
func Equal(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}

func trimTrailingDotsAndSpaces(s string) string {
	return strings.TrimRight(s, " .")
}
