package vault

import (
	"context"
	"sync"
)

// Backend is the subset of a vault that DryRun needs from the real store.
type Backend interface {
	Read(ctx context.Context, doc Document) (string, error)
	Exists(p string) bool
}

// PlannedRename is one rename recorded by DryRun.
type PlannedRename struct {
	From string
	To   string
}

// DryRun reads from a real vault but only records renames. Planned targets
// count as occupied and planned sources as free, so later documents in the
// same run resolve collisions against the planned state.
type DryRun struct {
	Inner Backend

	mu      sync.Mutex
	taken   map[string]bool
	vacated map[string]bool
	planned []PlannedRename
}

func (d *DryRun) Read(ctx context.Context, doc Document) (string, error) {
	return d.Inner.Read(ctx, doc)
}

func (d *DryRun) Exists(p string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.taken[p] {
		return true
	}
	if d.vacated[p] {
		return false
	}
	return d.Inner.Exists(p)
}

func (d *DryRun) Rename(_ context.Context, doc Document, newPath string) (Document, error) {
	newPath = NormalizePath(newPath)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.taken == nil {
		d.taken = map[string]bool{}
		d.vacated = map[string]bool{}
	}
	delete(d.taken, doc.Path)
	d.vacated[doc.Path] = true
	delete(d.vacated, newPath)
	d.taken[newPath] = true
	d.planned = append(d.planned, PlannedRename{From: doc.Path, To: newPath})
	return Document{Path: newPath}, nil
}

// Planned returns the recorded renames in order.
func (d *DryRun) Planned() []PlannedRename {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PlannedRename(nil), d.planned...)
}
