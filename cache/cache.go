// Package cache stores linked schema trees on disk so that documentation is
// fetched and parsed once per resource kind.
//
// The cache is a single JSON file holding an array of {"kind", "tree"}
// entries. Writes take an advisory file lock and replace the file
// atomically, so concurrent k2tf processes never observe a partial file.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"go.jacobcolvin.com/k2tf/tfdoc"
)

// ErrCorrupt indicates the cache file exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt schema cache")

// lockRetry is how often a blocked writer retries the file lock.
const lockRetry = 50 * time.Millisecond

// Entry is one cached schema tree.
type Entry struct {
	Kind string      `json:"kind"`
	Tree *tfdoc.Tree `json:"tree"`
}

// File is a schema cache backed by one JSON file.
type File struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// New creates a [File] at path. The file is created on the first [File.Store].
func New(path string) *File {
	return &File{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the cache file path.
func (f *File) Path() string {
	return f.path
}

// Load reads all cached trees keyed by kind. A missing file is an empty
// cache. An undecodable file returns an error wrapping [ErrCorrupt].
func (f *File) Load() (map[string]*tfdoc.Tree, error) {
	entries, err := f.read()
	if err != nil {
		return nil, err
	}

	trees := make(map[string]*tfdoc.Tree, len(entries))
	for _, e := range entries {
		trees[e.Kind] = e.Tree
	}

	return trees, nil
}

// Store adds or replaces the tree for kind. A corrupt file is overwritten.
func (f *File) Store(ctx context.Context, kind string, tree *tfdoc.Tree) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}

	if !locked {
		return fmt.Errorf("lock %s: %w", f.path, ctx.Err())
	}

	defer func() {
		err := f.lock.Unlock()
		if err != nil {
			slog.Warn("unlock schema cache", slog.String("path", f.path), slog.Any("err", err))
		}
	}()

	entries, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		slog.Warn("overwriting corrupt schema cache",
			slog.String("path", f.path),
			slog.Any("err", err),
		)

		entries = nil
	} else if err != nil {
		return err
	}

	replaced := false

	for i := range entries {
		if entries[i].Kind == kind {
			entries[i].Tree = tree
			replaced = true
		}
	}

	if !replaced {
		entries = append(entries, Entry{Kind: kind, Tree: tree})
	}

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema cache: %w", err)
	}

	err = atomic.WriteFile(f.path, bytes.NewReader(append(b, '\n')))
	if err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}

	slog.Debug("stored schema", slog.String("kind", kind), slog.String("path", f.path))

	return nil
}

func (f *File) read() ([]Entry, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var entries []Entry

	err = json.Unmarshal(b, &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, f.path, err)
	}

	for i, e := range entries {
		if e.Kind == "" || e.Tree == nil {
			return nil, fmt.Errorf("%w: %s: entry %d is incomplete", ErrCorrupt, f.path, i)
		}
	}

	return entries, nil
}
