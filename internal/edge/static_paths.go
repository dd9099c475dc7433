package edge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"lambda-http-adapter/internal/adapters/storage"
)

// StaticPathSet is the immutable set of URL paths served from static
// storage. It is built once per deployment and shared read-only.
type StaticPathSet struct {
	paths map[string]struct{}
}

// NewStaticPathSet builds a set from absolute URL paths. Paths without a
// leading slash get one.
func NewStaticPathSet(paths ...string) *StaticPathSet {
	s := &StaticPathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		s.paths[p] = struct{}{}
	}
	return s
}

// LoadStaticPathSet reads a JSON array of paths, as written by the manifest
// tool.
func LoadStaticPathSet(r io.Reader) (*StaticPathSet, error) {
	var paths []string
	if err := json.NewDecoder(r).Decode(&paths); err != nil {
		return nil, fmt.Errorf("decode static path manifest: %w", err)
	}
	return NewStaticPathSet(paths...), nil
}

// StaticPathSetFromStorage lists every asset in store.
func StaticPathSetFromStorage(ctx context.Context, store storage.AssetStore) (*StaticPathSet, error) {
	assets, err := storage.ListAll(ctx, store, "")
	if err != nil {
		return nil, fmt.Errorf("list static assets: %w", err)
	}
	paths := make([]string, len(assets))
	for i, a := range assets {
		paths[i] = a.Key
	}
	return NewStaticPathSet(paths...), nil
}

// Contains reports whether p is a static path. A nil set contains nothing.
func (s *StaticPathSet) Contains(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[p]
	return ok
}

// Len returns the number of paths.
func (s *StaticPathSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the paths in sorted order.
func (s *StaticPathSet) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MarshalJSON writes the manifest form read by LoadStaticPathSet.
func (s *StaticPathSet) MarshalJSON() ([]byte, error) {
	paths := s.Paths()
	if paths == nil {
		paths = []string{}
	}
	return json.Marshal(paths)
}
