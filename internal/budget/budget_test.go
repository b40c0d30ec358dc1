package budget

import (
    "strings"
    "testing"

    openai "github.com/sashabaranov/go-openai"
)

func TestEstimateTokens(t *testing.T) {
    cases := []struct {
        in   string
        want int
    }{
        {"", 0},
        {"a", 1},
        {"abcd", 1},
        {"abcde", 2},
        {"界界界界", 3},
    }
    for _, tc := range cases {
        if got := EstimateTokens(tc.in); got != tc.want {
            t.Fatalf("EstimateTokens(%q)=%d, want %d", tc.in, got, tc.want)
        }
    }
}

func TestEstimateMessages(t *testing.T) {
    msgs := []openai.ChatCompletionMessage{
        {Role: openai.ChatMessageRoleSystem, Content: strings.Repeat("a", 40)},
        {Role: openai.ChatMessageRoleUser, Content: strings.Repeat("b", 8)},
    }
    if got := EstimateMessages(msgs); got != 4+10+4+2 {
        t.Fatalf("EstimateMessages=%d, want 20", got)
    }
}

func TestModelContextTokens(t *testing.T) {
    if got := ModelContextTokens("GPT-4o-mini"); got != 128_000 {
        t.Fatalf("gpt-4o-mini=%d", got)
    }
    if got := ModelContextTokens("qwen2.5-7b-instruct-32k"); got != 32_768 {
        t.Fatalf("32k suffix=%d", got)
    }
    if got := ModelContextTokens("some-local-model"); got != DefaultContextTokens {
        t.Fatalf("unknown=%d", got)
    }
}

func TestFits(t *testing.T) {
    if !Fits("gpt-oss-20b", 4000, 64) {
        t.Fatal("4064 tokens should fit 4096")
    }
    if Fits("gpt-oss-20b", 4040, 64) {
        t.Fatal("4104 tokens should not fit 4096")
    }
}
