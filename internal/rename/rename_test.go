package rename

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hyperifyio/retitle/internal/vault"
)

// memHost is an in-memory naming namespace that counts renames.
type memHost struct {
	paths   map[string]bool
	renames int
	blank   bool
}

func newMemHost(paths ...string) *memHost {
	h := &memHost{paths: map[string]bool{}}
	for _, p := range paths {
		h.paths[p] = true
	}
	return h
}

func (h *memHost) Exists(p string) bool { return h.paths[p] }

func (h *memHost) Rename(_ context.Context, doc vault.Document, newPath string) (vault.Document, error) {
	h.renames++
	delete(h.paths, doc.Path)
	h.paths[newPath] = true
	if h.blank {
		return vault.Document{}, nil
	}
	return vault.Document{Path: newPath}, nil
}

func TestCandidatePath(t *testing.T) {
	cases := []struct {
		doc  string
		base string
		want string
	}{
		{"old.md", "New", "New.md"},
		{"dir/sub/old.md", "New", "dir/sub/New.md"},
		{"README", "Readme Title", "Readme Title.md"},
		{"notes/old.txt", "T", "notes/T.txt"},
	}
	for _, tc := range cases {
		if got := CandidatePath(vault.Document{Path: tc.doc}, tc.base); got != tc.want {
			t.Fatalf("CandidatePath(%q,%q)=%q, want %q", tc.doc, tc.base, got, tc.want)
		}
	}
}

func TestResolveUniquePath_Suffixes(t *testing.T) {
	h := newMemHost("New.md")
	r := &Renamer{Host: h}
	got, err := r.ResolveUniquePath("New.md")
	if err != nil || got != "New (2).md" {
		t.Fatalf("ResolveUniquePath=%q err=%v, want New (2).md", got, err)
	}
	h.paths["New (2).md"] = true
	got, err = r.ResolveUniquePath("New.md")
	if err != nil || got != "New (3).md" {
		t.Fatalf("ResolveUniquePath=%q err=%v, want New (3).md", got, err)
	}
	if got, _ := r.ResolveUniquePath("Free.md"); got != "Free.md" {
		t.Fatalf("free path changed to %q", got)
	}
}

func TestResolveUniquePath_NoExtensionAndDottedDir(t *testing.T) {
	h := newMemHost("v1.2/notes", "a/b.c")
	r := &Renamer{Host: h}
	if got, _ := r.ResolveUniquePath("v1.2/notes"); got != "v1.2/notes (2)" {
		t.Fatalf("got %q, want suffix without extension", got)
	}
	if got, _ := r.ResolveUniquePath("a/b.c"); got != "a/b (2).c" {
		t.Fatalf("got %q, want a/b (2).c", got)
	}
}

func TestResolveUniquePath_Exhausted(t *testing.T) {
	h := newMemHost("X.md")
	for i := 2; i < MaxAttempts; i++ {
		h.paths[fmt.Sprintf("X (%d).md", i)] = true
	}
	r := &Renamer{Host: h}
	if _, err := r.ResolveUniquePath("X.md"); !errors.Is(err, ErrNoUniquePath) {
		t.Fatalf("err=%v, want ErrNoUniquePath", err)
	}
}

func TestRename_SameBasenameIsNoop(t *testing.T) {
	h := newMemHost("dir/Title.md")
	r := &Renamer{Host: h}
	doc := vault.Document{Path: "dir/Title.md"}
	got, err := r.Rename(context.Background(), doc, "Title")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got != doc || h.renames != 0 {
		t.Fatalf("got %v with %d renames, want original and 0", got, h.renames)
	}
}

func TestRename_ConflictResolved(t *testing.T) {
	h := newMemHost("old.md", "New.md")
	r := &Renamer{Host: h}
	got, err := r.Rename(context.Background(), vault.Document{Path: "old.md"}, "New")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got.Path != "New (2).md" || h.renames != 1 {
		t.Fatalf("got %v renames=%d, want New (2).md and 1", got, h.renames)
	}
}

// A host that does not hand back a fresh reference leaves the original.
func TestRename_FallbackToOriginalReference(t *testing.T) {
	h := newMemHost("old.md")
	h.blank = true
	r := &Renamer{Host: h}
	doc := vault.Document{Path: "old.md"}
	got, err := r.Rename(context.Background(), doc, "Fresh")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got != doc || h.renames != 1 {
		t.Fatalf("got %v renames=%d", got, h.renames)
	}
}

type aliasHost struct{ *memHost }

func (a aliasHost) SameFile(x, y string) bool { return x == "Note.md" && y == "note.md" }

// A case-only rename on a case-insensitive host must not pick a suffix.
func TestRename_CaseOnlyOnAliasingHost(t *testing.T) {
	h := aliasHost{newMemHost("note.md", "Note.md")}
	r := &Renamer{Host: h}
	got, err := r.Rename(context.Background(), vault.Document{Path: "note.md"}, "Note")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got.Path != "Note.md" {
		t.Fatalf("got %q, want Note.md", got.Path)
	}
}
