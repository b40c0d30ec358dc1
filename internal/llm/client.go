package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/retitle/internal/cache"
	"github.com/hyperifyio/retitle/internal/notetext"
)

// CompletionsPath is appended to the configured base URL.
const CompletionsPath = "/chat/completions"

// Settings is the endpoint and sampling configuration for one client.
type Settings struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds a single request. Zero or negative disables the deadline.
	Timeout time.Duration
}

// Client sends chat completion requests to an OpenAI-compatible endpoint and
// returns the first textual completion.
type Client struct {
	Settings
	HTTPClient *http.Client
	// Cache, when non-nil, answers repeated identical requests locally.
	Cache *cache.LLMCache
}

type chatRequest struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Temperature float64                        `json:"temperature"`
	MaxTokens   int                            `json:"max_tokens"`
}

// Validate checks the settings every request needs.
func (c *Client) Validate() error {
	switch {
	case strings.TrimSpace(c.APIKey) == "":
		return ErrMissingCredential
	case strings.TrimSpace(c.BaseURL) == "":
		return ErrMissingEndpoint
	case strings.TrimSpace(c.Model) == "":
		return ErrMissingModel
	}
	return nil
}

// Endpoint returns the full completions URL.
func (c *Client) Endpoint() string {
	return JoinURL(c.BaseURL, CompletionsPath)
}

// Complete sends messages as-is and returns the completion text.
//
// The request races a timer of Settings.Timeout. Whichever settles first
// decides the result; when the timer wins the request context is cancelled
// and ErrTimeout is returned. Cancelling ctx aborts the call as well.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	key := cache.KeyFrom(c.Model, string(payload))
	if c.Cache != nil {
		if hit, ok, _ := c.Cache.Get(ctx, key); ok {
			log.Debug().Str("key", key[:12]).Msg("completion cache hit")
			return hit.Content, nil
		}
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}
	content, err := extractContent(body)
	if err != nil {
		return "", err
	}

	if c.Cache != nil {
		if err := c.Cache.Save(ctx, key, c.Model, content); err != nil {
			log.Debug().Err(err).Msg("completion cache save failed")
		}
	}
	return content, nil
}

type response struct {
	body []byte
	err  error
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan response, 1)
	go func() {
		b, err := c.do(reqCtx, payload)
		done <- response{body: b, err: err}
	}()

	var timeout <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		return r.body, r.err
	case <-timeout:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, c.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, payload []byte) ([]byte, error) {
	url := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(notetext.TakeFirstCodePoints(string(body), maxErrorBody)),
		}
	}
	return body, nil
}

// completionBody keeps the candidate fields raw so a non-string value in one
// location does not hide text in another.
type completionBody struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text  json.RawMessage `json:"text"`
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// extractContent returns the first non-blank string among
// choices[0].message.content, choices[0].text and choices[0].delta.content.
func extractContent(body []byte) (string, error) {
	var parsed completionBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponseShape, err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrInvalidResponseShape
	}
	first := parsed.Choices[0]
	for _, raw := range []json.RawMessage{first.Message.Content, first.Text, first.Delta.Content} {
		var s string
		if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
			continue
		}
		if strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", ErrInvalidResponseShape
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
