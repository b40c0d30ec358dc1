// Package console is the terminal front end of a rename run: prompts,
// progress and notices.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hyperifyio/retitle/internal/batch"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
)

// Console implements batch.UI on a pair of streams.
type Console struct {
	In  io.Reader
	Out io.Writer
	// AssumeYes answers every confirmation with yes without reading In.
	AssumeYes bool

	once   sync.Once
	lines  chan string
	active atomic.Pointer[Progress]
}

// New returns a Console on the process streams.
func New(assumeYes bool) *Console {
	return &Console{In: os.Stdin, Out: os.Stderr, AssumeYes: assumeYes}
}

var _ batch.UI = (*Console)(nil)

// Confirm prints the prompt and reads a y/N answer. End of input declines.
func (c *Console) Confirm(ctx context.Context, p batch.Prompt) (bool, error) {
	fmt.Fprintln(c.Out, titleStyle.Render(p.Title))
	if p.Message != "" {
		fmt.Fprintln(c.Out, p.Message)
	}
	if c.AssumeYes {
		fmt.Fprintln(c.Out, mutedStyle.Render(p.Accept+" (--yes)"))
		return true, nil
	}
	fmt.Fprintf(c.Out, "%s? [y/N]: ", p.Accept)

	c.once.Do(c.startReader)
	select {
	case <-ctx.Done():
		fmt.Fprintln(c.Out)
		return false, ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.Out)
			return false, nil
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		return choice == "y" || choice == "yes", nil
	}
}

// startReader feeds input lines to Confirm from one goroutine for the life of
// the Console. An answer typed after a cancelled prompt goes to the next one.
// The channel is closed at end of input.
func (c *Console) startReader() {
	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		r := bufio.NewReader(c.In)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				c.lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
}

// Notify prints a one-line notice.
func (c *Console) Notify(msg string) {
	fmt.Fprintln(c.Out, noticeStyle.Render(msg))
}

// StartProgress opens a progress display. On a terminal the status line is
// rewritten in place; otherwise each document gets its own line.
func (c *Console) StartProgress(total int) batch.Progress {
	p := &Progress{out: c.Out, total: total, inPlace: isTerminal(c.Out)}
	c.active.Store(p)
	fmt.Fprintln(c.Out, mutedStyle.Render(fmt.Sprintf("Processing %d notes. Press Ctrl+C to stop after the current note.", total)))
	return p
}

// Interrupt requests cancellation of the running batch. It reports false when
// there was nothing left to cancel gracefully, i.e. no batch is running or a
// cancellation was already requested.
func (c *Console) Interrupt() bool {
	p := c.active.Load()
	if p == nil || p.done.Load() {
		return false
	}
	return p.cancelled.CompareAndSwap(false, true)
}

// Progress is a console batch progress indicator.
type Progress struct {
	out       io.Writer
	total     int
	inPlace   bool
	cancelled atomic.Bool
	done      atomic.Bool
	mu        sync.Mutex
	dirty     bool
}

func (p *Progress) Update(current, total int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("[%d/%d] %s", current, total, status)
	if p.inPlace {
		fmt.Fprintf(p.out, "\r\033[K%s", line)
		p.dirty = true
		return
	}
	fmt.Fprintln(p.out, line)
}

func (p *Progress) Cancelled() bool { return p.cancelled.Load() }

func (p *Progress) Finish(summary []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		fmt.Fprintln(p.out)
		p.dirty = false
	}
	if p.cancelled.Load() {
		fmt.Fprintln(p.out, mutedStyle.Render("Stopped."))
	}
	fmt.Fprintln(p.out, summaryStyle.Render(strings.Join(summary, "\n")))
	p.done.Store(true)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
