package app

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/rs/zerolog/log"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. Env takes precedence over the config file;
// explicitly set flags are applied afterwards and win over both.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("RETITLE_VAULT"); v != "" { cfg.VaultDir = v }

    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := os.Getenv("LLM_API_KEY"); v != "" {
        cfg.LLMAPIKey = v
    } else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLMAPIKey == "" {
        cfg.LLMAPIKey = v
    }

    setInt(&cfg.MaxInputChars, "RETITLE_MAX_INPUT_CHARS")
    setInt(&cfg.MaxTitleChars, "RETITLE_MAX_TITLE_CHARS")
    setInt(&cfg.MaxTokens, "RETITLE_MAX_TOKENS")
    setInt(&cfg.VaultBatchLimit, "RETITLE_VAULT_LIMIT")
    if s := strings.TrimSpace(os.Getenv("RETITLE_TEMPERATURE")); s != "" {
        if f, err := strconv.ParseFloat(s, 64); err == nil {
            cfg.Temperature = f
        } else {
            log.Warn().Str("key", "RETITLE_TEMPERATURE").Str("value", s).Msg("ignoring invalid number")
        }
    }
    setDuration(&cfg.RequestTimeout, "RETITLE_TIMEOUT")
    setDuration(&cfg.RequestDelay, "RETITLE_DELAY")

    if v := os.Getenv("RETITLE_SYSTEM_PROMPT_FILE"); v != "" { cfg.SystemPromptFile = v }
    if v := os.Getenv("RETITLE_USER_PROMPT_FILE"); v != "" { cfg.UserPromptFile = v }

    if v := os.Getenv("CACHE_DIR"); v != "" { cfg.CacheDir = v }
    setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
}

func setInt(dst *int, key string) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" { return }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Warn().Str("key", key).Str("value", s).Msg("ignoring invalid integer")
        return
    }
    *dst = n
}

func setDuration(dst *time.Duration, key string) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" { return }
    d, err := ParseDuration(s)
    if err != nil {
        log.Warn().Str("key", key).Str("value", s).Msg("ignoring invalid duration")
        return
    }
    *dst = d
}

// Booleans override when env present and truthy/falsey
func setBool(dst *bool, key string) {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
    case "1", "true", "yes", "on":
        *dst = true
    case "0", "false", "no", "off":
        *dst = false
    }
}

// ParseDuration accepts Go duration syntax ("90s", "1m30s") or a bare integer
// number of milliseconds.
func ParseDuration(s string) (time.Duration, error) {
    s = strings.TrimSpace(s)
    if n, err := strconv.ParseInt(s, 10, 64); err == nil {
        return time.Duration(n) * time.Millisecond, nil
    }
    return time.ParseDuration(s)
}
