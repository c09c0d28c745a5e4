package mpq

import (
	"fmt"
	"sort"
)

// MemoryLayer is a Layer backed by an in-memory file map. It is used to stage
// loose files and in tests.
type MemoryLayer struct {
	name  string
	files map[string][]byte
	names map[string]string
}

// NewMemoryLayer creates a layer holding files keyed by entry name.
func NewMemoryLayer(name string, files map[string][]byte) *MemoryLayer {
	l := &MemoryLayer{
		name:  name,
		files: make(map[string][]byte, len(files)),
		names: make(map[string]string, len(files)),
	}
	for n, data := range files {
		l.Put(n, data)
	}
	return l
}

// Put adds or replaces an entry.
func (l *MemoryLayer) Put(name string, data []byte) {
	key := normalizeName(name)
	l.files[key] = data
	l.names[key] = ToArchivePath(name)
}

// Name returns the layer name.
func (l *MemoryLayer) Name() string { return l.name }

// HasFile checks if an entry exists.
func (l *MemoryLayer) HasFile(name string) bool {
	_, ok := l.files[normalizeName(name)]
	return ok
}

// ReadFile returns a copy of an entry.
func (l *MemoryLayer) ReadFile(name string) ([]byte, error) {
	data, ok := l.files[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// ListFiles returns all entry names, sorted.
func (l *MemoryLayer) ListFiles() ([]string, error) {
	names := make([]string, 0, len(l.names))
	for _, n := range l.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (l *MemoryLayer) Close() error { return nil }
