package mpq

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const resolveCacheSize = 4096

// Set is an ordered stack of archives. Layers added later take priority,
// so patch archives override the base archives they were stacked on.
type Set struct {
	layers   []Layer
	resolved *lru.Cache[string, int]
}

// NewSet creates an empty archive set.
func NewSet() *Set {
	cache, _ := lru.New[string, int](resolveCacheSize)
	return &Set{resolved: cache}
}

// Add pushes a layer on top of the set.
func (s *Set) Add(layer Layer) {
	s.layers = append(s.layers, layer)
	s.resolved.Purge()
}

// Len returns the number of layers.
func (s *Set) Len() int {
	return len(s.layers)
}

// Names returns layer names from lowest to highest priority.
func (s *Set) Names() []string {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.Name()
	}
	return names
}

// find returns the highest-priority layer holding name.
func (s *Set) find(name string) (Layer, bool) {
	key := normalizeName(name)
	if idx, ok := s.resolved.Get(key); ok {
		return s.layers[idx], true
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		if s.layers[i].HasFile(name) {
			s.resolved.Add(key, i)
			return s.layers[i], true
		}
	}
	return nil, false
}

// Contains checks if any layer holds name.
func (s *Set) Contains(name string) bool {
	_, ok := s.find(name)
	return ok
}

// OpenNewest reads name from the newest layer that holds it.
func (s *Set) OpenNewest(name string) ([]byte, error) {
	layer, ok := s.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := layer.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", name, layer.Name(), err)
	}
	return data, nil
}

// FileSize returns the size of the newest version of name.
func (s *Set) FileSize(name string) (uint32, error) {
	data, err := s.OpenNewest(name)
	if err != nil {
		return 0, err
	}
	return uint32(len(data)), nil
}

// List returns the sorted union of entry names matching pattern across all layers.
// Patterns without a path separator match the base name; others match the full path.
// Matching is case-insensitive and treats '/' and '\' alike. An empty pattern matches everything.
func (s *Set) List(pattern string) ([]string, error) {
	pattern = strings.ToLower(strings.ReplaceAll(pattern, "\\", "/"))
	if pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	fullPath := strings.Contains(pattern, "/")

	seen := make(map[string]string)
	for _, layer := range s.layers {
		names, err := layer.ListFiles()
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", layer.Name(), err)
		}
		for _, name := range names {
			key := normalizeName(name)
			if _, dup := seen[key]; dup {
				continue
			}
			if pattern != "" {
				subject := strings.ReplaceAll(key, "\\", "/")
				if !fullPath {
					subject = path.Base(subject)
				}
				if ok, _ := path.Match(pattern, subject); !ok {
					continue
				}
			}
			seen[key] = ToArchivePath(name)
		}
	}

	result := make([]string, 0, len(seen))
	for _, name := range seen {
		result = append(result, name)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i]) < strings.ToLower(result[j])
	})
	return result, nil
}

// Close closes every layer and empties the set.
func (s *Set) Close() error {
	var errs []error
	for i := len(s.layers) - 1; i >= 0; i-- {
		if err := s.layers[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", s.layers[i].Name(), err))
		}
	}
	s.layers = nil
	s.resolved.Purge()
	return errors.Join(errs...)
}
