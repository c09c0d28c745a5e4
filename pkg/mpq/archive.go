// Package mpq provides read access to layered MPQ client archives.
package mpq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gompq "github.com/suprsokr/go-mpq"
)

// listFileName is the internal entry that enumerates an archive's contents.
const listFileName = "(listfile)"

// ErrNotFound is returned when no layer contains the requested entry.
var ErrNotFound = errors.New("entry not found")

// Layer is a single archive in a Set.
type Layer interface {
	Name() string
	HasFile(name string) bool
	ReadFile(name string) ([]byte, error)
	ListFiles() ([]string, error)
	Close() error
}

// Archive is an opened MPQ archive.
type Archive struct {
	path    string
	archive *gompq.Archive
	scratch string
}

// Open opens an MPQ archive for reading.
func Open(path string) (*Archive, error) {
	archive, err := gompq.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	scratch, err := os.MkdirTemp("", "mpq-")
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	return &Archive{
		path:    path,
		archive: archive,
		scratch: scratch,
	}, nil
}

// OpenLayer opens path as a Layer. It is the default opener used by Set builders.
func OpenLayer(path string) (Layer, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Name returns the archive path.
func (a *Archive) Name() string {
	return a.path
}

// Close closes the archive and removes its scratch directory.
func (a *Archive) Close() error {
	var err error
	if a.archive != nil {
		err = a.archive.Close()
		a.archive = nil
	}
	if a.scratch != "" {
		os.RemoveAll(a.scratch)
		a.scratch = ""
	}
	return err
}

// HasFile checks if an entry exists.
func (a *Archive) HasFile(name string) bool {
	return a.archive.HasFile(ToArchivePath(name))
}

// ReadFile reads an entry from the archive.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	entry := ToArchivePath(name)
	if !a.archive.HasFile(entry) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	dest := filepath.Join(a.scratch, "entry")
	if err := a.archive.ExtractFile(entry, dest); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", name, err)
	}
	defer os.Remove(dest)

	return os.ReadFile(dest)
}

// ListFiles returns the entries named in the archive's listfile.
// Archives without a listfile report no entries.
func (a *Archive) ListFiles() ([]string, error) {
	if !a.archive.HasFile(listFileName) {
		return nil, nil
	}
	data, err := a.ReadFile(listFileName)
	if err != nil {
		return nil, err
	}
	return parseListFile(data), nil
}

// parseListFile splits a listfile into entry names. Entries are separated by
// newlines or semicolons; blank lines are skipped.
func parseListFile(data []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		for _, name := range strings.Split(scanner.Text(), ";") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// ToArchivePath converts a path to the backslash-separated form stored in archives.
func ToArchivePath(name string) string {
	return strings.ReplaceAll(name, "/", "\\")
}

// normalizeName returns the case-insensitive lookup key for an entry name.
func normalizeName(name string) string {
	return strings.ToLower(ToArchivePath(name))
}
