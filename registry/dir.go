package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// docLayouts are the provider repository paths that hold resource
// documentation, in lookup order. "%s" is replaced with the slug.
var docLayouts = []string{
	"website/docs/r/%s.html.markdown",
	"website/docs/r/%s.markdown",
	"website/docs/r/%s.html.md",
	"docs/resources/%s.md",
}

// Dir reads resource documentation from a checkout of the provider
// repository.
type Dir struct {
	fs   afero.Fs
	root string
}

// NewDir creates a [Dir] rooted at root on fsys.
func NewDir(fsys afero.Fs, root string) *Dir {
	return &Dir{fs: fsys, root: root}
}

// Document implements [Source].
func (d *Dir) Document(ctx context.Context, kind, version string) (Doc, error) {
	err := ctx.Err()
	if err != nil {
		return Doc{}, err
	}

	for _, slug := range slugs(kind, version) {
		for _, layout := range docLayouts {
			p := filepath.Join(d.root, filepath.FromSlash(fmt.Sprintf(layout, slug)))

			b, err := afero.ReadFile(d.fs, p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			if err != nil {
				return Doc{}, fmt.Errorf("read %s: %w", p, err)
			}

			slog.Debug("read provider document", slog.String("path", p))

			return Doc{
				Name:    docName(slug, ""),
				Slug:    slug,
				Content: string(b),
			}, nil
		}
	}

	return Doc{}, fmt.Errorf("%w: %s %s in %s", ErrNotFound, kind, version, d.root)
}
