// Package batch sequences title generation and renaming over a set of notes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/retitle/internal/budget"
	"github.com/hyperifyio/retitle/internal/notetext"
	"github.com/hyperifyio/retitle/internal/prompt"
	"github.com/hyperifyio/retitle/internal/rename"
	"github.com/hyperifyio/retitle/internal/title"
	"github.com/hyperifyio/retitle/internal/vault"
)

// ErrConfiguration wraps a completer validation failure. It stops a run before
// any document is read.
var ErrConfiguration = errors.New("configuration")

// Origin tags how a run was started. It only decides whether the run is
// batch-shaped for confirmation and reporting.
type Origin string

const (
	OriginCommand   Origin = "command"
	OriginSelection Origin = "selection"
	OriginVault     Origin = "vault"
)

// EligibleExt is the only extension a run processes.
const EligibleExt = "md"

// PreviewChars bounds the note preview shown before sending.
const PreviewChars = 300

// Store is the vault a run reads from and renames in.
type Store interface {
	rename.Host
	Read(ctx context.Context, doc vault.Document) (string, error)
}

// Completer turns chat messages into model text.
type Completer interface {
	Validate() error
	Endpoint() string
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Options are the per-run settings taken from the configuration.
type Options struct {
	Templates          prompt.Templates
	MaxInputChars      int
	MaxTitleChars      int
	ConfirmBeforeSend  bool
	ConfirmBeforeBatch bool
	VaultLimit         int
	// Delay is the pause after each document that reached the completion
	// endpoint. Documents skipped before a request and the last document
	// are not followed by a pause.
	Delay              time.Duration
}

// Outcome is the result class of one document.
type Outcome string

const (
	Renamed Outcome = "renamed"
	Skipped Outcome = "skipped"
	Failed  Outcome = "failed"
)

// Result records what happened to one document.
type Result struct {
	Path    string
	NewPath string
	Outcome Outcome
	Err     error
}

// Summary aggregates a finished run.
type Summary struct {
	Renamed int
	Skipped int
	Failed  int
	// Total is the number of eligible documents after filtering and capping.
	Total     int
	Batch     bool
	Cancelled bool
	Declined  bool
	Results   []Result
}

// Lines renders the counters the way progress summaries show them.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Renamed: %d", s.Renamed),
		fmt.Sprintf("Skipped: %d", s.Skipped),
		fmt.Sprintf("Failed: %d", s.Failed),
	}
}

func (s *Summary) add(r Result) {
	switch r.Outcome {
	case Renamed:
		s.Renamed++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Runner executes runs against one store and completer.
type Runner struct {
	Store     Store
	Completer Completer
	UI        UI
	Options   Options
}

// Filter keeps the documents a run can process.
func Filter(docs []vault.Document) []vault.Document {
	out := make([]vault.Document, 0, len(docs))
	for _, d := range docs {
		if d.Ext() == EligibleExt {
			out = append(out, d)
		}
	}
	return out
}

// IsBatch reports whether a run over n documents from origin is batch-shaped.
// A selection is batch-shaped even when it holds a single document.
func IsBatch(n int, origin Origin) bool {
	return n > 1 || origin == OriginVault || origin == OriginSelection
}

// Run processes docs sequentially. Only configuration errors and context
// cancellation before the run starts are returned as errors; per-document
// failures are counted in the summary.
func (r *Runner) Run(ctx context.Context, docs []vault.Document, origin Origin) (Summary, error) {
	logger := log.With().Str("run_id", uuid.NewString()).Str("origin", string(origin)).Logger()

	eligible := Filter(docs)
	if origin == OriginVault && r.Options.VaultLimit > 0 {
		sort.Slice(eligible, func(i, j int) bool { return eligible[i].Path < eligible[j].Path })
		if len(eligible) > r.Options.VaultLimit {
			eligible = eligible[:r.Options.VaultLimit]
		}
	}
	summary := Summary{Total: len(eligible), Batch: IsBatch(len(eligible), origin)}
	if len(eligible) == 0 {
		r.UI.Notify("No Markdown notes to process.")
		return summary, nil
	}

	if err := r.Completer.Validate(); err != nil {
		r.UI.Notify("LLM settings are incomplete: " + err.Error())
		return summary, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if summary.Batch && r.Options.ConfirmBeforeBatch {
		ok, err := r.UI.Confirm(ctx, Prompt{
			Title:   "Rename in batch?",
			Message: fmt.Sprintf("The model will be called for %d notes and their files renamed. Try a small set first.", len(eligible)),
			Accept:  "Start",
			Decline: "Cancel",
		})
		if err != nil {
			return summary, err
		}
		if !ok {
			summary.Declined = true
			logger.Info().Int("total", len(eligible)).Msg("batch declined")
			return summary, nil
		}
	}

	logger.Info().Int("total", len(eligible)).Bool("batch", summary.Batch).Msg("run started")

	progress := Progress(nopProgress{})
	if summary.Batch {
		progress = r.UI.StartProgress(len(eligible))
	}

	for i, doc := range eligible {
		if progress.Cancelled() || ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		progress.Update(i+1, len(eligible), doc.Path)

		res, called := r.processOne(ctx, doc, summary.Batch)
		if res.Err != nil {
			logger.Warn().Err(res.Err).Str("path", doc.Path).Msg("title rename failed")
		} else if res.Outcome == Renamed {
			logger.Debug().Str("path", doc.Path).Str("to", res.NewPath).Msg("renamed")
		}
		summary.add(res)

		if called && r.Options.Delay > 0 && i < len(eligible)-1 {
			if err := sleep(ctx, r.Options.Delay); err != nil {
				summary.Cancelled = true
				break
			}
		}
	}

	progress.Finish(summary.Lines())
	r.report(summary)
	logger.Info().
		Int("renamed", summary.Renamed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("cancelled", summary.Cancelled).
		Msg("run finished")
	return summary, nil
}

// processOne runs the pipeline for one document. called reports whether the
// completion endpoint was reached, which is what the request delay paces.
func (r *Runner) processOne(ctx context.Context, doc vault.Document, batch bool) (res Result, called bool) {
	res = Result{Path: doc.Path, Outcome: Skipped}
	fail := func(err error) (Result, bool) {
		res.Outcome, res.Err = Failed, err
		return res, called
	}

	raw, err := r.Store.Read(ctx, doc)
	if err != nil {
		return fail(err)
	}
	snippet := strings.TrimSpace(notetext.TakeFirstCodePoints(notetext.StripFrontMatter(raw), r.Options.MaxInputChars))
	if snippet == "" {
		return res, false
	}

	if !batch && r.Options.ConfirmBeforeSend {
		ok, err := r.UI.Confirm(ctx, r.sendPrompt(doc, snippet))
		if err != nil {
			return fail(err)
		}
		if !ok {
			return res, false
		}
	}

	messages := prompt.Build(snippet, r.Options.Templates, r.Options.MaxTitleChars)
	log.Debug().
		Str("path", doc.Path).
		Int("snippet_chars", notetext.CodePointCount(snippet)).
		Int("prompt_tokens_est", budget.EstimateMessages(messages)).
		Msg("requesting title")
	called = true
	text, err := r.Completer.Complete(ctx, messages)
	if err != nil {
		return fail(err)
	}

	basename := title.Sanitize(title.Extract(text), r.Options.MaxTitleChars)
	if title.Equal(basename, doc.Basename()) {
		return res, called
	}

	renamer := rename.Renamer{Host: r.Store}
	renamed, err := renamer.Rename(ctx, doc, basename)
	if err != nil {
		return fail(err)
	}
	if renamed.Path == doc.Path {
		return res, called
	}
	res.Outcome, res.NewPath = Renamed, renamed.Path
	return res, called
}

func (r *Runner) sendPrompt(doc vault.Document, snippet string) Prompt {
	preview := snippet
	if notetext.CodePointCount(snippet) > PreviewChars {
		preview = notetext.TakeFirstCodePoints(snippet, PreviewChars) + "…"
	}
	return Prompt{
		Title: "Send note content to the model?",
		Message: fmt.Sprintf("File: %s\nThe first %d characters will be sent to: %s\n\nPreview:\n%s",
			doc.Path, notetext.CodePointCount(snippet), r.Completer.Endpoint(), preview),
		Accept:  "Send and rename",
		Decline: "Cancel",
	}
}

func (r *Runner) report(s Summary) {
	switch {
	case s.Batch:
		r.UI.Notify(fmt.Sprintf("Batch finished: renamed %d, skipped %d, failed %d", s.Renamed, s.Skipped, s.Failed))
	case s.Failed > 0:
		r.UI.Notify("Title generation failed, see the log for details.")
	case s.Renamed > 0:
		r.UI.Notify("Title generated and file renamed.")
	default:
		r.UI.Notify("Not renamed (cancelled or title unchanged).")
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
