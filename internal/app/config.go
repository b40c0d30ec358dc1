package app

import (
	"math"
	"time"

	"github.com/hyperifyio/retitle/internal/batch"
	"github.com/hyperifyio/retitle/internal/llm"
	"github.com/hyperifyio/retitle/internal/prompt"
)

// Config holds runtime configuration for the application.
type Config struct {
	VaultDir string

	// LLM
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration

	// Prompts. A non-empty *File field replaces the inline text on load.
	SystemPrompt     string
	SystemPromptFile string
	UserPrompt       string
	UserPromptFile   string

	// Limits
	MaxInputChars   int
	MaxTitleChars   int
	VaultBatchLimit int
	RequestDelay    time.Duration

	// Confirmation
	ConfirmBeforeSend  bool
	ConfirmBeforeBatch bool
	AssumeYes          bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Behavior
	DryRun  bool
	Verbose bool
}

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// DefaultConfig returns the configuration used when no source sets a value.
func DefaultConfig() Config {
	return Config{
		VaultDir:           ".",
		LLMBaseURL:         DefaultBaseURL,
		LLMModel:           DefaultModel,
		Temperature:        0.2,
		MaxTokens:          64,
		RequestTimeout:     60 * time.Second,
		MaxInputChars:      3000,
		MaxTitleChars:      60,
		ConfirmBeforeSend:  true,
		ConfirmBeforeBatch: true,
	}
}

type intRange struct{ min, max int }

var (
	maxTokensRange     = intRange{16, 512}
	maxInputCharsRange = intRange{100, 100_000}
	maxTitleCharsRange = intRange{5, 200}
	vaultLimitRange    = intRange{0, 100_000}
)

const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minTimeout     = 5 * time.Second
	maxTimeout     = 10 * time.Minute
	maxDelay       = 60 * time.Second
)

func (r intRange) clamp(v int) int {
	if v < r.min {
		return r.min
	}
	if v > r.max {
		return r.max
	}
	return v
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// Normalize clamps every numeric field into its documented range. It runs
// once after all configuration sources are merged.
func (c *Config) Normalize() {
	if math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0) {
		c.Temperature = DefaultConfig().Temperature
	}
	c.Temperature = math.Max(minTemperature, math.Min(maxTemperature, c.Temperature))
	c.MaxTokens = maxTokensRange.clamp(c.MaxTokens)
	c.RequestTimeout = clampDuration(c.RequestTimeout, minTimeout, maxTimeout)
	c.MaxInputChars = maxInputCharsRange.clamp(c.MaxInputChars)
	c.MaxTitleChars = maxTitleCharsRange.clamp(c.MaxTitleChars)
	c.VaultBatchLimit = vaultLimitRange.clamp(c.VaultBatchLimit)
	c.RequestDelay = clampDuration(c.RequestDelay, 0, maxDelay)
}

// LLMSettings returns the completion client settings.
func (c Config) LLMSettings() llm.Settings {
	return llm.Settings{
		BaseURL:     c.LLMBaseURL,
		APIKey:      c.LLMAPIKey,
		Model:       c.LLMModel,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.RequestTimeout,
	}
}

// BatchOptions returns the per-run settings of the orchestrator.
func (c Config) BatchOptions() batch.Options {
	return batch.Options{
		Templates:          prompt.Templates{System: c.SystemPrompt, User: c.UserPrompt},
		MaxInputChars:      c.MaxInputChars,
		MaxTitleChars:      c.MaxTitleChars,
		ConfirmBeforeSend:  c.ConfirmBeforeSend && !c.AssumeYes,
		ConfirmBeforeBatch: c.ConfirmBeforeBatch && !c.AssumeYes,
		VaultLimit:         c.VaultBatchLimit,
		Delay:              c.RequestDelay,
	}
}
