package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash"
	"github.com/dustin/go-humanize"
	"github.com/invopop/yaml"
)

// ReportName is the file a run writes its summary to, relative to the output directory.
const ReportName = "extract-report.yaml"

// Report summarizes one extraction run.
type Report struct {
	Generation string    `json:"generation"`
	Build      uint32    `json:"build"`
	Magic      string    `json:"version_magic"`
	Locales    []string  `json:"locales,omitempty"`
	Finished   time.Time `json:"finished"`
	DBC        []DBCSet  `json:"dbc,omitempty"`
	Maps       []MapStat `json:"maps,omitempty"`
}

// DBCSet lists the tables extracted for one locale.
type DBCSet struct {
	Locale string      `json:"locale,omitempty"`
	Dir    string      `json:"dir"`
	Files  []FileEntry `json:"files"`
}

// FileEntry describes one extracted file.
type FileEntry struct {
	Name     string `json:"name"`
	Size     uint64 `json:"size"`
	Human    string `json:"human"`
	Checksum string `json:"xxhash"`
}

// MapStat counts the tiles of one map.
type MapStat struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Tiles   int    `json:"tiles"`
	Written int    `json:"written"`
	Skipped int    `json:"skipped"`
	Bytes   uint64 `json:"bytes"`
	Human   string `json:"human"`
}

func newFileEntry(name string, data []byte) FileEntry {
	return FileEntry{
		Name:     name,
		Size:     uint64(len(data)),
		Human:    humanize.Bytes(uint64(len(data))),
		Checksum: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}
}

// TileCount returns the number of map files written.
func (r *Report) TileCount() int {
	n := 0
	for _, m := range r.Maps {
		n += m.Written
	}
	return n
}

// DBCCount returns the number of tables extracted across all locales.
func (r *Report) DBCCount() int {
	n := 0
	for _, s := range r.DBC {
		n += len(s.Files)
	}
	return n
}

// WriteFile writes the report as YAML.
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadReport loads a report written by WriteFile.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}
