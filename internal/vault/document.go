package vault

import (
	"path"
	"strings"
)

// Document identifies a file inside a vault by its slash-separated path
// relative to the vault root. Renames produce a new Document; callers must not
// assume an old value still names the file.
type Document struct {
	Path string
}

// Dir returns the parent directory, or "" for files at the vault root.
func (d Document) Dir() string {
	dir := path.Dir(d.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Name returns the last path element including the extension.
func (d Document) Name() string {
	return path.Base(d.Path)
}

// Ext returns the extension without the leading dot, or "".
func (d Document) Ext() string {
	name := d.Name()
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

// Basename returns the file name without its extension.
func (d Document) Basename() string {
	name := d.Name()
	if ext := d.Ext(); ext != "" {
		return name[:len(name)-len(ext)-1]
	}
	return name
}

// NormalizePath converts backslashes to slashes and drops empty, "." and
// leading/trailing separators.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}
