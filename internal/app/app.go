package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/retitle/internal/batch"
	"github.com/hyperifyio/retitle/internal/budget"
	"github.com/hyperifyio/retitle/internal/cache"
	"github.com/hyperifyio/retitle/internal/llm"
	"github.com/hyperifyio/retitle/internal/notetext"
	"github.com/hyperifyio/retitle/internal/prompt"
	"github.com/hyperifyio/retitle/internal/vault"
)

// LargeSelection is the selection size above which a cost warning is shown.
const LargeSelection = 200

// checkPreviewChars bounds the model answer echoed by Check.
const checkPreviewChars = 80

// App wires configuration, vault, completion client and UI together.
type App struct {
	cfg    Config
	fs     *vault.FS
	dry    *vault.DryRun
	client *llm.Client
	http   *http.Client
	ui     batch.UI
}

// New builds an App for a normalized configuration. Only an unusable vault
// directory fails here; missing LLM settings surface when a run starts.
func New(ctx context.Context, cfg Config, ui batch.UI) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	hc := llm.NewHTTPClient()
	a := &App{
		cfg:    cfg,
		fs:     &vault.FS{Root: cfg.VaultDir},
		http:   hc,
		ui:     ui,
		client: &llm.Client{Settings: cfg.LLMSettings(), HTTPClient: hc},
	}
	if cfg.DryRun {
		a.dry = &vault.DryRun{Inner: a.fs}
	}
	warnIfPromptTooLarge(cfg)

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge is best-effort; a failure must not block renaming.
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("cache purged")
			}
		}
		a.client.Cache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms, MaxAge: cfg.CacheMaxAge}
	}
	return a, nil
}

// warnIfPromptTooLarge logs when a full-length snippet would not fit the
// model's context window.
func warnIfPromptTooLarge(cfg Config) {
	worst := prompt.Build(strings.Repeat("x", cfg.MaxInputChars), cfg.BatchOptions().Templates, cfg.MaxTitleChars)
	tokens := budget.EstimateMessages(worst)
	if !budget.Fits(cfg.LLMModel, tokens, cfg.MaxTokens) {
		log.Warn().
			Str("model", cfg.LLMModel).
			Int("prompt_tokens_est", tokens).
			Int("context_tokens", budget.ModelContextTokens(cfg.LLMModel)).
			Msg("max input chars may exceed the model context; consider lowering --max-input-chars")
	}
}

func (a *App) Close() {
	a.http.CloseIdleConnections()
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// Planned returns the renames recorded in dry-run mode.
func (a *App) Planned() []vault.PlannedRename {
	if a.dry == nil {
		return nil
	}
	return a.dry.Planned()
}

func (a *App) runner() *batch.Runner {
	var store batch.Store = a.fs
	if a.dry != nil {
		store = a.dry
	}
	return &batch.Runner{Store: store, Completer: a.client, UI: a.ui, Options: a.cfg.BatchOptions()}
}

// RenameFile titles and renames a single note.
func (a *App) RenameFile(ctx context.Context, path string) (batch.Summary, error) {
	doc, err := a.fs.Resolve(path)
	if err != nil {
		return batch.Summary{}, err
	}
	return a.runner().Run(ctx, []vault.Document{doc}, batch.OriginCommand)
}

// RenameFiles runs over an explicit selection. Directories expand to the
// files below them; duplicates keep their first position.
func (a *App) RenameFiles(ctx context.Context, paths []string) (batch.Summary, error) {
	var docs []vault.Document
	seen := map[string]bool{}
	for _, p := range paths {
		expanded, err := a.fs.Expand(ctx, p)
		if err != nil {
			return batch.Summary{}, err
		}
		for _, d := range expanded {
			if seen[d.Path] {
				continue
			}
			seen[d.Path] = true
			docs = append(docs, d)
		}
	}
	if n := len(batch.Filter(docs)); n > LargeSelection {
		a.ui.Notify(fmt.Sprintf("%d files selected; this may be slow or costly. Try a small set first.", n))
	}
	return a.runner().Run(ctx, docs, batch.OriginSelection)
}

// RenameVault runs over every note in the vault.
func (a *App) RenameVault(ctx context.Context) (batch.Summary, error) {
	docs, err := a.fs.List(ctx)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("list vault: %w", err)
	}
	return a.runner().Run(ctx, docs, batch.OriginVault)
}

// Check sends a minimal request to verify the endpoint, key and model. It
// returns a short preview of the answer.
func (a *App) Check(ctx context.Context) (string, error) {
	if err := a.client.Validate(); err != nil {
		return "", err
	}

	// Listing models is a courtesy; many compatible servers do not implement it.
	lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	models, err := llm.NewOpenAIProvider(a.client.Settings, a.http).ListModels(lctx)
	cancel()
	if err != nil {
		log.Debug().Err(err).Msg("model list failed; continuing")
	} else {
		found := false
		for _, m := range models.Models {
			if m.ID == a.cfg.LLMModel {
				found = true
				break
			}
		}
		log.Info().Int("count", len(models.Models)).Bool("model_listed", found).Msg("LLM models available")
	}

	probe := &llm.Client{Settings: a.client.Settings, HTTPClient: a.http}
	probe.MaxTokens = min(16, a.cfg.MaxTokens)
	text, err := probe.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
		{Role: openai.ChatMessageRoleUser, Content: "Reply with OK only."},
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "OK", nil
	}
	return notetext.TakeFirstCodePoints(text, checkPreviewChars), nil
}
