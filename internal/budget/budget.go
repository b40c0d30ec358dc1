// Package budget estimates prompt sizes against model context windows.
package budget

import (
    "math"
    "strings"

    openai "github.com/sashabaranov/go-openai"
)

// perMessageOverhead approximates the role and framing tokens of one chat message.
const perMessageOverhead = 4

// DefaultContextTokens is assumed for models the table does not know.
const DefaultContextTokens = 8192

// EstimateTokens returns a conservative token estimate for s (~4 bytes per
// token, which also covers multi-byte scripts reasonably).
func EstimateTokens(s string) int {
    if s == "" {
        return 0
    }
    return int(math.Ceil(float64(len(s)) / 4.0))
}

// EstimateMessages estimates the prompt tokens of a chat request.
func EstimateMessages(messages []openai.ChatCompletionMessage) int {
    total := 0
    for _, m := range messages {
        total += perMessageOverhead + EstimateTokens(m.Content)
    }
    return total
}

// ModelContextTokens returns an estimated maximum context window for a model.
func ModelContextTokens(model string) int {
    name := strings.ToLower(strings.TrimSpace(model))
    if v, ok := knownModelMax[name]; ok {
        return v
    }
    // Heuristics based on common suffixes and families
    switch {
    case strings.HasSuffix(name, "128k"):
        return 128_000
    case strings.HasSuffix(name, "32k"):
        return 32_768
    case strings.Contains(name, "-mini"), strings.HasPrefix(name, "gpt-4"):
        return 128_000
    }
    return DefaultContextTokens
}

// Fits reports whether promptTokens plus the output reservation fit into the
// model's context window.
func Fits(model string, promptTokens, maxOutput int) bool {
    if maxOutput < 0 {
        maxOutput = 0
    }
    return promptTokens+maxOutput <= ModelContextTokens(model)
}

// knownModelMax contains rough context sizes for common model identifiers.
var knownModelMax = map[string]int{
    "gpt-4o":        128_000,
    "gpt-4o-mini":   128_000,
    "gpt-4.1":       1_000_000,
    "gpt-4.1-mini":  1_000_000,
    "gpt-3.5-turbo": 16_384,
    "llama-3":       8_192,
    "llama-3.1":     128_000,
    "gpt-oss-20b":   4_096,
}
