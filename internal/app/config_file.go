package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Pointer and
// empty-string fields mean "not set" so the file only overrides what it names.
// Durations are strings in Go syntax ("60s") or integer milliseconds.
type FileConfig struct {
    Vault string `yaml:"vault,omitempty" json:"vault,omitempty"`

    LLM struct {
        BaseURL     string   `yaml:"base,omitempty" json:"base,omitempty"`
        Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
        APIKey      string   `yaml:"key,omitempty" json:"key,omitempty"`
        Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
        MaxTokens   *int     `yaml:"maxTokens,omitempty" json:"maxTokens,omitempty"`
        Timeout     string   `yaml:"timeout,omitempty" json:"timeout,omitempty"`
    } `yaml:"llm" json:"llm"`

    Prompts struct {
        System     string `yaml:"system,omitempty" json:"system,omitempty"`
        SystemFile string `yaml:"systemFile,omitempty" json:"systemFile,omitempty"`
        User       string `yaml:"user,omitempty" json:"user,omitempty"`
        UserFile   string `yaml:"userFile,omitempty" json:"userFile,omitempty"`
    } `yaml:"prompts" json:"prompts"`

    Max struct {
        InputChars *int `yaml:"inputChars,omitempty" json:"inputChars,omitempty"`
        TitleChars *int `yaml:"titleChars,omitempty" json:"titleChars,omitempty"`
        VaultBatch *int `yaml:"vaultBatch,omitempty" json:"vaultBatch,omitempty"`
    } `yaml:"max" json:"max"`

    Delay string `yaml:"delay,omitempty" json:"delay,omitempty"`

    Confirm struct {
        Send  *bool `yaml:"send,omitempty" json:"send,omitempty"`
        Batch *bool `yaml:"batch,omitempty" json:"batch,omitempty"`
    } `yaml:"confirm" json:"confirm"`

    Cache struct {
        Dir         string `yaml:"dir,omitempty" json:"dir,omitempty"`
        MaxAge      string `yaml:"maxAge,omitempty" json:"maxAge,omitempty"`
        Clear       *bool  `yaml:"clear,omitempty" json:"clear,omitempty"`
        StrictPerms *bool  `yaml:"strictPerms,omitempty" json:"strictPerms,omitempty"`
    } `yaml:"cache" json:"cache"`

    DryRun  *bool `yaml:"dryRun,omitempty" json:"dryRun,omitempty"`
    Verbose *bool `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. It runs before
// env and flag overrides.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if fc.Vault != "" { cfg.VaultDir = fc.Vault }

    if fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if fc.LLM.Temperature != nil { cfg.Temperature = *fc.LLM.Temperature }
    if fc.LLM.MaxTokens != nil { cfg.MaxTokens = *fc.LLM.MaxTokens }

    if fc.Prompts.System != "" { cfg.SystemPrompt = fc.Prompts.System }
    if fc.Prompts.SystemFile != "" { cfg.SystemPromptFile = fc.Prompts.SystemFile }
    if fc.Prompts.User != "" { cfg.UserPrompt = fc.Prompts.User }
    if fc.Prompts.UserFile != "" { cfg.UserPromptFile = fc.Prompts.UserFile }

    if fc.Max.InputChars != nil { cfg.MaxInputChars = *fc.Max.InputChars }
    if fc.Max.TitleChars != nil { cfg.MaxTitleChars = *fc.Max.TitleChars }
    if fc.Max.VaultBatch != nil { cfg.VaultBatchLimit = *fc.Max.VaultBatch }

    if fc.Confirm.Send != nil { cfg.ConfirmBeforeSend = *fc.Confirm.Send }
    if fc.Confirm.Batch != nil { cfg.ConfirmBeforeBatch = *fc.Confirm.Batch }

    if fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if fc.Cache.Clear != nil { cfg.CacheClear = *fc.Cache.Clear }
    if fc.Cache.StrictPerms != nil { cfg.CacheStrictPerms = *fc.Cache.StrictPerms }

    if fc.DryRun != nil { cfg.DryRun = *fc.DryRun }
    if fc.Verbose != nil { cfg.Verbose = *fc.Verbose }

    durations := []struct {
        name string
        raw  string
        dst  *time.Duration
    }{
        {"llm.timeout", fc.LLM.Timeout, &cfg.RequestTimeout},
        {"delay", fc.Delay, &cfg.RequestDelay},
        {"cache.maxAge", fc.Cache.MaxAge, &cfg.CacheMaxAge},
    }
    for _, d := range durations {
        if strings.TrimSpace(d.raw) == "" { continue }
        v, err := ParseDuration(d.raw)
        if err != nil {
            return fmt.Errorf("config: %s: %w", d.name, err)
        }
        *d.dst = v
    }
    return nil
}

// LoadPromptFiles replaces inline prompts with the contents of the configured
// prompt files. Files win over inline text.
func LoadPromptFiles(cfg *Config) error {
    if cfg == nil { return nil }
    load := func(path string, dst *string) error {
        if strings.TrimSpace(path) == "" { return nil }
        b, err := os.ReadFile(path)
        if err != nil {
            return fmt.Errorf("prompt file: %w", err)
        }
        *dst = string(b)
        return nil
    }
    if err := load(cfg.SystemPromptFile, &cfg.SystemPrompt); err != nil {
        return err
    }
    return load(cfg.UserPromptFile, &cfg.UserPrompt)
}

// ValidateConfig checks settings that no clamp can repair. Missing LLM
// settings are reported per run by the completion client instead.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.VaultDir) == "" {
        return errors.New("config: vault directory is required")
    }
    info, err := os.Stat(cfg.VaultDir)
    if err != nil {
        return fmt.Errorf("config: vault: %w", err)
    }
    if !info.IsDir() {
        return fmt.Errorf("config: vault %s is not a directory", cfg.VaultDir)
    }
    return nil
}

// ToFileConfig renders cfg in the file schema. The API key is masked unless
// reveal is set.
func ToFileConfig(cfg Config, reveal bool) FileConfig {
    var fc FileConfig
    fc.Vault = cfg.VaultDir
    fc.LLM.BaseURL = cfg.LLMBaseURL
    fc.LLM.Model = cfg.LLMModel
    fc.LLM.APIKey = cfg.LLMAPIKey
    if !reveal { fc.LLM.APIKey = maskKey(cfg.LLMAPIKey) }
    fc.LLM.Temperature = &cfg.Temperature
    fc.LLM.MaxTokens = &cfg.MaxTokens
    fc.LLM.Timeout = cfg.RequestTimeout.String()
    fc.Prompts.System = cfg.SystemPrompt
    fc.Prompts.SystemFile = cfg.SystemPromptFile
    fc.Prompts.User = cfg.UserPrompt
    fc.Prompts.UserFile = cfg.UserPromptFile
    fc.Max.InputChars = &cfg.MaxInputChars
    fc.Max.TitleChars = &cfg.MaxTitleChars
    fc.Max.VaultBatch = &cfg.VaultBatchLimit
    fc.Delay = cfg.RequestDelay.String()
    fc.Confirm.Send = &cfg.ConfirmBeforeSend
    fc.Confirm.Batch = &cfg.ConfirmBeforeBatch
    fc.Cache.Dir = cfg.CacheDir
    if cfg.CacheMaxAge > 0 { fc.Cache.MaxAge = cfg.CacheMaxAge.String() }
    fc.Cache.Clear = &cfg.CacheClear
    fc.Cache.StrictPerms = &cfg.CacheStrictPerms
    fc.DryRun = &cfg.DryRun
    fc.Verbose = &cfg.Verbose
    return fc
}

func maskKey(key string) string {
    if key == "" { return "" }
    if len(key) <= 8 { return "****" }
    return key[:4] + "..." + key[len(key)-4:]
}
