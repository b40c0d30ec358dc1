package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrTargetExists is returned by Rename when the destination is taken by a
// different file. Renames never overwrite.
var ErrTargetExists = errors.New("rename target already exists")

// ErrOutsideVault is returned when a path does not resolve inside the root.
var ErrOutsideVault = errors.New("path is outside the vault")

// FS is a vault backed by a directory on the local filesystem.
type FS struct {
	Root string
}

func (v *FS) abs(p string) string {
	return filepath.Join(v.Root, filepath.FromSlash(NormalizePath(p)))
}

// List returns every file below the root in lexical path order. Hidden files
// and directories (".obsidian", ".git", ".trash", ...) are skipped.
func (v *FS) List(ctx context.Context) ([]Document, error) {
	return v.walk(ctx, v.Root)
}

// Expand resolves a user-supplied path. Files resolve to themselves;
// directories expand to the files below them.
func (v *FS) Expand(ctx context.Context, arg string) ([]Document, error) {
	rel, err := v.relative(arg)
	if err != nil {
		return nil, err
	}
	full := v.abs(rel)
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []Document{{Path: rel}}, nil
	}
	return v.walk(ctx, full)
}

// Resolve maps a path given on the command line (absolute, or relative to the
// working directory) to a Document inside the vault.
func (v *FS) Resolve(arg string) (Document, error) {
	rel, err := v.relative(arg)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: rel}, nil
}

func (v *FS) relative(arg string) (string, error) {
	root, err := filepath.Abs(v.Root)
	if err != nil {
		return "", err
	}
	target, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, arg)
	}
	return NormalizePath(filepath.ToSlash(rel)), nil
}

func (v *FS) walk(ctx context.Context, start string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p != start && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(v.Root, p)
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: NormalizePath(filepath.ToSlash(rel))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Read returns the full text of doc.
func (v *FS) Read(_ context.Context, doc Document) (string, error) {
	b, err := os.ReadFile(v.abs(doc.Path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", doc.Path, err)
	}
	return string(b), nil
}

// Exists reports whether anything occupies p.
func (v *FS) Exists(p string) bool {
	_, err := os.Lstat(v.abs(p))
	return err == nil
}

// SameFile reports whether a and b name the same file, which happens for
// spellings that differ only in case on case-insensitive filesystems.
func (v *FS) SameFile(a, b string) bool {
	ia, err := os.Stat(v.abs(a))
	if err != nil {
		return false
	}
	ib, err := os.Stat(v.abs(b))
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// Rename moves doc to newPath and returns the document at its new location.
func (v *FS) Rename(_ context.Context, doc Document, newPath string) (Document, error) {
	newPath = NormalizePath(newPath)
	if v.Exists(newPath) && !v.SameFile(doc.Path, newPath) {
		return doc, fmt.Errorf("%w: %s", ErrTargetExists, newPath)
	}
	dst := v.abs(newPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return doc, fmt.Errorf("create parent of %s: %w", newPath, err)
	}
	if err := os.Rename(v.abs(doc.Path), dst); err != nil {
		return doc, fmt.Errorf("rename %s: %w", doc.Path, err)
	}
	return Document{Path: newPath}, nil
}
