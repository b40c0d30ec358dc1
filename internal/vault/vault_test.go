package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestDocument_Parts(t *testing.T) {
	cases := []struct {
		path, dir, base, ext string
	}{
		{"old.md", "", "old", "md"},
		{"notes/sub/My Note.md", "notes/sub", "My Note", "md"},
		{"archive.tar.gz", "", "archive.tar", "gz"},
		{"README", "", "README", ""},
		{".hidden", "", ".hidden", ""},
	}
	for _, tc := range cases {
		d := Document{Path: tc.path}
		if d.Dir() != tc.dir || d.Basename() != tc.base || d.Ext() != tc.ext {
			t.Fatalf("%q: dir=%q base=%q ext=%q, want %q %q %q", tc.path, d.Dir(), d.Basename(), d.Ext(), tc.dir, tc.base, tc.ext)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"a//b///c.md":  "a/b/c.md",
		"/lead.md":     "lead.md",
		`win\dir\x.md`: "win/dir/x.md",
		"./a/./b.md":   "a/b.md",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestFS_ListSkipsHiddenAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "sub/c.txt", "c")
	writeFile(t, root, ".obsidian/workspace.json", "{}")
	writeFile(t, root, ".hidden.md", "x")

	v := &FS{Root: root}
	docs, err := v.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []Document{{Path: "a.md"}, {Path: "b.md"}, {Path: "sub/c.txt"}}
	if !reflect.DeepEqual(docs, want) {
		t.Fatalf("List=%v, want %v", docs, want)
	}
}

func TestFS_ExpandDirectoryAndFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dir/one.md", "1")
	writeFile(t, root, "dir/two.md", "2")
	writeFile(t, root, "top.md", "t")
	v := &FS{Root: root}

	docs, err := v.Expand(context.Background(), filepath.Join(root, "dir"))
	if err != nil {
		t.Fatalf("Expand dir: %v", err)
	}
	if len(docs) != 2 || docs[0].Path != "dir/one.md" || docs[1].Path != "dir/two.md" {
		t.Fatalf("Expand dir=%v", docs)
	}
	docs, err = v.Expand(context.Background(), filepath.Join(root, "top.md"))
	if err != nil || len(docs) != 1 || docs[0].Path != "top.md" {
		t.Fatalf("Expand file=%v err=%v", docs, err)
	}
}

func TestFS_ResolveOutsideVault(t *testing.T) {
	root := t.TempDir()
	v := &FS{Root: filepath.Join(root, "vault")}
	if _, err := v.Resolve(filepath.Join(root, "elsewhere.md")); !errors.Is(err, ErrOutsideVault) {
		t.Fatalf("Resolve outside: err=%v, want ErrOutsideVault", err)
	}
	d, err := v.Resolve(filepath.Join(root, "vault", "x", "y.md"))
	if err != nil || d.Path != "x/y.md" {
		t.Fatalf("Resolve inside=%v err=%v", d, err)
	}
}

func TestFS_RenameRefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.md", "b")
	v := &FS{Root: root}

	if _, err := v.Rename(context.Background(), Document{Path: "a.md"}, "b.md"); !errors.Is(err, ErrTargetExists) {
		t.Fatalf("Rename onto existing: err=%v, want ErrTargetExists", err)
	}
	got, err := v.Rename(context.Background(), Document{Path: "a.md"}, "c.md")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got.Path != "c.md" || !v.Exists("c.md") || v.Exists("a.md") {
		t.Fatalf("after rename: doc=%v c=%v a=%v", got, v.Exists("c.md"), v.Exists("a.md"))
	}
	text, err := v.Read(context.Background(), got)
	if err != nil || text != "a" {
		t.Fatalf("Read renamed=%q err=%v", text, err)
	}
}

func TestFS_ReadMissing(t *testing.T) {
	v := &FS{Root: t.TempDir()}
	if _, err := v.Read(context.Background(), Document{Path: "nope.md"}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read missing: err=%v, want not-exist", err)
	}
}

func TestDryRun_TracksPlannedState(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.md", "b")
	d := &DryRun{Inner: &FS{Root: root}}

	if _, err := d.Rename(context.Background(), Document{Path: "a.md"}, "New.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !d.Exists("New.md") {
		t.Fatalf("planned target should be occupied")
	}
	if d.Exists("a.md") {
		t.Fatalf("planned source should be free")
	}
	if !d.Exists("b.md") {
		t.Fatalf("untouched file should still exist")
	}
	if _, err := os.Stat(filepath.Join(root, "a.md")); err != nil {
		t.Fatalf("dry run touched the filesystem: %v", err)
	}
	want := []PlannedRename{{From: "a.md", To: "New.md"}}
	if got := d.Planned(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Planned=%v, want %v", got, want)
	}
}
