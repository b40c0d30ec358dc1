package notetext

import (
	"testing"
	"unicode/utf8"
)

func TestStripFrontMatter(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "terminated block", in: "---\nk: v\n---\n\nBody", want: "\nBody"},
		{name: "unterminated block kept", in: "---\nk: v\nBody", want: "---\nk: v\nBody"},
		{name: "no block", in: "Body\n---\nmore", want: "Body\n---\nmore"},
		{name: "crlf", in: "---\r\ntitle: x\r\n---\r\nBody", want: "Body"},
		{name: "bom before fence", in: "\uFEFF---\na: 1\n---\nBody", want: "Body"},
		{name: "too short", in: "---\n---", want: "---\n---"},
		{name: "fence with trailing spaces", in: "---  \na: 1\n---\t\nBody", want: "Body"},
		{name: "longer opening rule is not a fence", in: "----\na: 1\n---\nBody", want: "----\na: 1\n---\nBody"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFrontMatter(tc.in); got != tc.want {
				t.Fatalf("StripFrontMatter(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTakeFirstCodePoints(t *testing.T) {
	if got := TakeFirstCodePoints("hello", 0); got != "" {
		t.Fatalf("n=0 got %q, want empty", got)
	}
	if got := TakeFirstCodePoints("hello", -3); got != "" {
		t.Fatalf("n<0 got %q, want empty", got)
	}
	if got := TakeFirstCodePoints("hello", 10); got != "hello" {
		t.Fatalf("short input got %q, want hello", got)
	}
	if got := TakeFirstCodePoints("hello", 5); got != "hello" {
		t.Fatalf("exact length got %q, want hello", got)
	}
	if got := TakeFirstCodePoints("标题测试", 2); got != "标题" {
		t.Fatalf("cjk got %q, want 标题", got)
	}
}

// Truncation must count code points and never split a multi-byte rune.
func TestTakeFirstCodePoints_CodePointSafety(t *testing.T) {
	inputs := []string{
		"😀😃😄😁😆",
		"a😀b𝄞c",
		"🇫🇮 flag and 👩‍💻 zwj",
		"plain ascii text",
		"",
	}
	for _, in := range inputs {
		total := utf8.RuneCountInString(in)
		for n := 0; n <= total+2; n++ {
			got := TakeFirstCodePoints(in, n)
			if !utf8.ValidString(got) {
				t.Fatalf("TakeFirstCodePoints(%q,%d)=%q is not valid UTF-8", in, n, got)
			}
			want := n
			if total < n {
				want = total
			}
			if c := CodePointCount(got); c != want {
				t.Fatalf("TakeFirstCodePoints(%q,%d) has %d code points, want %d", in, n, c, want)
			}
		}
	}
}
