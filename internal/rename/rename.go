package rename

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/hyperifyio/retitle/internal/vault"
)

// MaxAttempts bounds the numeric suffix search in ResolveUniquePath.
const MaxAttempts = 10_000

// DefaultExt is used for documents without an extension.
const DefaultExt = "md"

// ErrNoUniquePath is returned when every suffixed variant is occupied.
var ErrNoUniquePath = errors.New("could not find a unique file path")

// Host is the naming namespace a Renamer works against.
type Host interface {
	Exists(p string) bool
	Rename(ctx context.Context, doc vault.Document, newPath string) (vault.Document, error)
}

// sameFiler is implemented by hosts where two spellings may refer to one
// file, e.g. case-insensitive filesystems.
type sameFiler interface {
	SameFile(a, b string) bool
}

var extRe = regexp.MustCompile(`^(.*?)(\.[^./\\]+)$`)

// CandidatePath composes <dir>/<basename>.<ext> for doc.
func CandidatePath(doc vault.Document, basename string) string {
	ext := doc.Ext()
	if ext == "" {
		ext = DefaultExt
	}
	name := basename + "." + ext
	if dir := doc.Dir(); dir != "" {
		return vault.NormalizePath(dir + "/" + name)
	}
	return vault.NormalizePath(name)
}

// Renamer renames documents without overwriting existing files.
type Renamer struct {
	Host Host
}

// ResolveUniquePath returns candidate when it is free, otherwise the first
// free "<stem> (n)<ext>" for n = 2, 3, ...
func (r *Renamer) ResolveUniquePath(candidate string) (string, error) {
	if !r.Host.Exists(candidate) {
		return candidate, nil
	}
	stem, ext := candidate, ""
	if m := extRe.FindStringSubmatch(candidate); m != nil {
		stem, ext = m[1], m[2]
	}
	for i := 2; i < MaxAttempts; i++ {
		attempt := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if !r.Host.Exists(attempt) {
			return attempt, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoUniquePath, candidate)
}

// Rename moves doc to basename in its current directory, picking a free
// suffixed name on collision. When the result is the current path, doc is
// returned and the host is not called. A host that returns a zero Document
// leaves doc as the result.
func (r *Renamer) Rename(ctx context.Context, doc vault.Document, basename string) (vault.Document, error) {
	candidate := CandidatePath(doc, basename)
	if candidate == doc.Path {
		return doc, nil
	}

	target := candidate
	if sf, ok := r.Host.(sameFiler); !ok || !sf.SameFile(candidate, doc.Path) {
		var err error
		target, err = r.ResolveUniquePath(candidate)
		if err != nil {
			return doc, err
		}
	}
	if target == doc.Path {
		return doc, nil
	}

	renamed, err := r.Host.Rename(ctx, doc, target)
	if err != nil {
		return doc, err
	}
	if renamed.Path == "" {
		return doc, nil
	}
	return renamed, nil
}
