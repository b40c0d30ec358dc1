package batch

import "context"

// Prompt is a blocking accept/decline question.
type Prompt struct {
	Title   string
	Message string
	Accept  string
	Decline string
}

// UI is the user-facing side of a run.
type UI interface {
	// Confirm blocks until the user answers.
	Confirm(ctx context.Context, p Prompt) (bool, error)
	// StartProgress opens a progress indicator for a batch of total documents.
	StartProgress(total int) Progress
	// Notify shows a short status message.
	Notify(msg string)
}

// Progress tracks a running batch. Cancelled is polled between documents;
// once it reports true it never reverts for the same run.
type Progress interface {
	Update(current, total int, status string)
	Cancelled() bool
	Finish(summary []string)
}

type nopProgress struct{}

func (nopProgress) Update(int, int, string) {}
func (nopProgress) Cancelled() bool         { return false }
func (nopProgress) Finish([]string)         {}
