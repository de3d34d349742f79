package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"go.jacobcolvin.com/k2tf/cache"
	"go.jacobcolvin.com/k2tf/registry"
	"go.jacobcolvin.com/k2tf/tfdoc"
)

// Store returns schema trees, building each kind at most once.
//
// Trees come from memory, then the cache file, then the documentation
// source. A corrupt cache file is ignored and rewritten.
type Store struct {
	source registry.Source
	cache  *cache.File

	mu     sync.RWMutex
	trees  map[string]*tfdoc.Tree
	loaded bool

	group singleflight.Group
}

// NewStore creates a [Store]. A nil cache disables caching.
func NewStore(source registry.Source, c *cache.File) *Store {
	return &Store{
		source: source,
		cache:  c,
		trees:  make(map[string]*tfdoc.Tree),
	}
}

// Tree returns the schema tree for the snake-cased kind at version.
func (s *Store) Tree(ctx context.Context, kind, version string) (*tfdoc.Tree, error) {
	key := kind
	if version != "" {
		key += "_" + version
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		s.load()

		s.mu.RLock()
		tree, ok := s.trees[key]
		s.mu.RUnlock()

		if ok {
			slog.Debug("schema cache hit", slog.String("kind", key))

			return tree, nil
		}

		slog.Debug("schema cache miss", slog.String("kind", key))

		doc, err := s.source.Document(ctx, kind, version)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", key, err)
		}

		tree = tfdoc.Build(doc.Name, doc.Content)

		s.mu.Lock()
		s.trees[key] = tree
		s.mu.Unlock()

		if s.cache != nil {
			err := s.cache.Store(ctx, key, tree)
			if err != nil {
				slog.Warn("store schema cache",
					slog.String("kind", key),
					slog.Any("err", err),
				)
			}
		}

		return tree, nil
	})
	if err != nil {
		return nil, err
	}

	tree, ok := result.(*tfdoc.Tree)
	if !ok {
		return nil, fmt.Errorf("schema for %s: unexpected %T", key, result)
	}

	return tree, nil
}

// load reads the cache file into memory once.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded || s.cache == nil {
		return
	}

	s.loaded = true

	trees, err := s.cache.Load()
	if err != nil {
		slog.Warn("ignoring schema cache",
			slog.String("path", s.cache.Path()),
			slog.Any("err", err),
		)

		return
	}

	for kind, tree := range trees {
		if _, ok := s.trees[kind]; !ok {
			s.trees[kind] = tree
		}
	}
}
