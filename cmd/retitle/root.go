package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/retitle/internal/app"
)

// options holds the raw flag values. Only flags the user actually set are
// applied on top of file and env configuration.
type options struct {
	configPath string
	envFiles   []string

	vault            string
	llmBase          string
	llmModel         string
	llmKey           string
	temperature      float64
	maxTokens        int
	timeout          time.Duration
	delay            time.Duration
	maxInputChars    int
	maxTitleChars    int
	vaultLimit       int
	systemPrompt     string
	systemPromptFile string
	userPrompt       string
	userPromptFile   string
	confirmSend      bool
	confirmBatch     bool
	assumeYes        bool
	dryRun           bool
	cacheDir         string
	cacheMaxAge      time.Duration
	cacheClear       bool
	cacheStrict      bool
	verbose          bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	def := app.DefaultConfig()

	root := &cobra.Command{
		Use:   "retitle",
		Short: "Rename Markdown notes to titles generated by a language model",
		Long: `retitle reads Markdown notes, asks an OpenAI-compatible chat completion
endpoint for a short title, and renames each file to that title. Existing
files are never overwritten: collisions get a numeric suffix such as
"Title (2).md".`,
		Version:       app.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	f.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	f.StringVar(&opts.vault, "vault", def.VaultDir, "Vault root directory")
	f.StringVar(&opts.llmBase, "llm.base", def.LLMBaseURL, "OpenAI-compatible base URL")
	f.StringVar(&opts.llmModel, "llm.model", def.LLMModel, "Model name")
	f.StringVar(&opts.llmKey, "llm.key", "", "API key (prefer LLM_API_KEY)")
	f.Float64Var(&opts.temperature, "temperature", def.Temperature, "Sampling temperature (0-2)")
	f.IntVar(&opts.maxTokens, "max-tokens", def.MaxTokens, "Output token cap (16-512)")
	f.DurationVar(&opts.timeout, "timeout", def.RequestTimeout, "Per-request timeout (5s-10m)")
	f.DurationVar(&opts.delay, "delay", def.RequestDelay, "Pause between requests in a batch (0-60s)")
	f.IntVar(&opts.maxInputChars, "max-input-chars", def.MaxInputChars, "Characters of each note sent to the model")
	f.IntVar(&opts.maxTitleChars, "max-title-chars", def.MaxTitleChars, "Maximum title length in characters")
	f.IntVar(&opts.vaultLimit, "vault-limit", def.VaultBatchLimit, "Process at most this many notes in a vault run (0 = all)")
	f.StringVar(&opts.systemPrompt, "system-prompt", "", "Override the system prompt template")
	f.StringVar(&opts.systemPromptFile, "system-prompt-file", "", "Read the system prompt template from a file")
	f.StringVar(&opts.userPrompt, "user-prompt", "", "Override the user prompt template ({{maxTitleChars}}, {{noteSnippet}})")
	f.StringVar(&opts.userPromptFile, "user-prompt-file", "", "Read the user prompt template from a file")
	f.BoolVar(&opts.confirmSend, "confirm-send", def.ConfirmBeforeSend, "Confirm before sending a single note")
	f.BoolVar(&opts.confirmBatch, "confirm-batch", def.ConfirmBeforeBatch, "Confirm before starting a batch")
	f.BoolVarP(&opts.assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Generate titles and print planned renames without renaming")
	f.StringVar(&opts.cacheDir, "cache.dir", "", "Cache completion answers in this directory")
	f.DurationVar(&opts.cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge; 0 disables")
	f.BoolVar(&opts.cacheClear, "cache.clear", false, "Clear the cache directory before the run")
	f.BoolVar(&opts.cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		newFileCmd(opts),
		newFilesCmd(opts),
		newVaultCmd(opts),
		newCheckCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig merges defaults, config file, environment and explicitly set
// flags, in increasing precedence.
func loadConfig(cmd *cobra.Command, opts *options) (app.Config, error) {
	if err := app.LoadEnvFiles(opts.envFiles...); err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, err
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, err
		}
	}
	app.ApplyEnvOverrides(&cfg)
	applyFlags(cmd.Flags(), opts, &cfg)
	if err := app.LoadPromptFiles(&cfg); err != nil {
		return app.Config{}, err
	}
	cfg.Normalize()

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, o *options, cfg *app.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("vault", func() { cfg.VaultDir = o.vault })
	set("llm.base", func() { cfg.LLMBaseURL = o.llmBase })
	set("llm.model", func() { cfg.LLMModel = o.llmModel })
	set("llm.key", func() { cfg.LLMAPIKey = o.llmKey })
	set("temperature", func() { cfg.Temperature = o.temperature })
	set("max-tokens", func() { cfg.MaxTokens = o.maxTokens })
	set("timeout", func() { cfg.RequestTimeout = o.timeout })
	set("delay", func() { cfg.RequestDelay = o.delay })
	set("max-input-chars", func() { cfg.MaxInputChars = o.maxInputChars })
	set("max-title-chars", func() { cfg.MaxTitleChars = o.maxTitleChars })
	set("vault-limit", func() { cfg.VaultBatchLimit = o.vaultLimit })
	set("system-prompt", func() { cfg.SystemPrompt = o.systemPrompt })
	set("system-prompt-file", func() { cfg.SystemPromptFile = o.systemPromptFile })
	set("user-prompt", func() { cfg.UserPrompt = o.userPrompt })
	set("user-prompt-file", func() { cfg.UserPromptFile = o.userPromptFile })
	set("confirm-send", func() { cfg.ConfirmBeforeSend = o.confirmSend })
	set("confirm-batch", func() { cfg.ConfirmBeforeBatch = o.confirmBatch })
	set("yes", func() { cfg.AssumeYes = o.assumeYes })
	set("dry-run", func() { cfg.DryRun = o.dryRun })
	set("cache.dir", func() { cfg.CacheDir = o.cacheDir })
	set("cache.maxAge", func() { cfg.CacheMaxAge = o.cacheMaxAge })
	set("cache.clear", func() { cfg.CacheClear = o.cacheClear })
	set("cache.strictPerms", func() { cfg.CacheStrictPerms = o.cacheStrict })
	set("verbose", func() { cfg.Verbose = o.verbose })
}
