package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/retitle/internal/app"
	"github.com/hyperifyio/retitle/internal/batch"
	"github.com/hyperifyio/retitle/internal/console"
)

func newFileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Generate a title for one note and rename it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, opts, func(ctx context.Context, a *app.App) (batch.Summary, error) {
				return a.RenameFile(ctx, args[0])
			})
		},
	}
}

func newFilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files <path|dir>...",
		Short: "Generate titles for a selection of notes and rename them",
		Long:  "Directories expand to every note below them. A selection is always handled as a batch, even with a single note.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, opts, func(ctx context.Context, a *app.App) (batch.Summary, error) {
				return a.RenameFiles(ctx, args)
			})
		},
	}
}

func newVaultCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vault",
		Short: "Generate titles for every note in the vault and rename them",
		Long:  "Hidden directories such as .obsidian, .git and .trash are skipped. With --vault-limit the notes are sorted by path and only the first N are processed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, opts, func(ctx context.Context, a *app.App) (batch.Summary, error) {
				return a.RenameVault(ctx)
			})
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Send a minimal request to verify the endpoint, key and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ui := console.New(cfg.AssumeYes)
			a, err := app.New(cmd.Context(), cfg, ui)
			if err != nil {
				return err
			}
			defer a.Close()
			reply, err := a.Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			ui.Notify("Connection OK: " + reply)
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(app.ToFileConfig(cfg, reveal))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal-key", false, "Print the API key unmasked")
	return cmd
}

type renameFunc func(ctx context.Context, a *app.App) (batch.Summary, error)

func runRename(cmd *cobra.Command, opts *options, run renameFunc) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	ui := console.New(cfg.AssumeYes)
	a, err := app.New(cmd.Context(), cfg, ui)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := handleInterrupts(cmd.Context(), ui)
	defer stop()

	summary, err := run(ctx, a)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), summary, cfg.DryRun)
	return nil
}

// handleInterrupts lets a first interrupt stop a batch after the current note
// (or abort a single request), and exits on the second.
func handleInterrupts(parent context.Context, ui *console.Console) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		first := true
		for {
			select {
			case <-done:
				return
			case <-sig:
				if first {
					first = false
					if ui.Interrupt() {
						log.Warn().Msg("interrupt: stopping after the current note; press Ctrl+C again to quit")
					} else {
						log.Warn().Msg("interrupt: aborting")
						cancel()
					}
					continue
				}
				os.Exit(exitInterrupted)
			}
		}
	}()
	return ctx, func() {
		signal.Stop(sig)
		close(done)
		cancel()
	}
}

func printResults(w io.Writer, s batch.Summary, dryRun bool) {
	verb := "renamed"
	if dryRun {
		verb = "would rename"
	}
	for _, r := range s.Results {
		if r.Outcome == batch.Renamed {
			fmt.Fprintf(w, "%s %s -> %s\n", verb, r.Path, r.NewPath)
		}
	}
}
