package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Faultbox/mapgen/pkg/mpq"
)

// archiveArgs are archive paths, lowest priority first.
type archiveArgs struct {
	Archives []string `positional-arg-name:"archive" required:"1"`
}

// openArchives stacks the given archives into one set.
func openArchives(paths []string) (*mpq.Set, error) {
	set := mpq.NewSet()
	for _, p := range paths {
		layer, err := mpq.OpenLayer(p)
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		set.Add(layer)
	}
	return set, nil
}

type infoCmd struct {
	Args archiveArgs `positional-args:"yes" required:"yes"`
}

// Execute prints entry counts by extension.
func (c *infoCmd) Execute(_ []string) error {
	set, err := openArchives(c.Args.Archives)
	if err != nil {
		return err
	}
	defer set.Close()

	files, err := set.List("")
	if err != nil {
		return err
	}

	extCount := make(map[string]int)
	var totalSize uint64
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(strings.ReplaceAll(f, "\\", "/")))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		if size, err := set.FileSize(f); err == nil {
			totalSize += uint64(size)
		}
	}

	fmt.Printf("Archives: %s\n", strings.Join(set.Names(), ", "))
	fmt.Printf("Files:    %d\n", len(files))
	fmt.Printf("Size:     %s\n", humanize.Bytes(totalSize))
	fmt.Println()
	fmt.Println("Files by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %s\n", s.ext, humanize.Comma(int64(s.count)))
	}
	return nil
}

type listCmd struct {
	Pattern string      `short:"p" long:"pattern" description:"Glob pattern; patterns with a path separator match the full path"`
	Limit   int         `short:"n" long:"limit" description:"Limit output to N files (0 = all)"`
	Args    archiveArgs `positional-args:"yes" required:"yes"`
}

// Execute lists the newest version of every matching entry.
func (c *listCmd) Execute(_ []string) error {
	set, err := openArchives(c.Args.Archives)
	if err != nil {
		return err
	}
	defer set.Close()

	files, err := set.List(c.Pattern)
	if err != nil {
		return err
	}
	count := 0
	for _, f := range files {
		fmt.Println(f)
		count++
		if c.Limit > 0 && count >= c.Limit {
			break
		}
	}
	if c.Pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

type extractCmd struct {
	Pattern string      `short:"p" long:"pattern" required:"yes" description:"Entry name or glob pattern"`
	Output  string      `short:"o" long:"output" default:"." description:"Output directory"`
	Args    archiveArgs `positional-args:"yes" required:"yes"`
}

// Execute extracts one entry, or every entry matching a pattern with its
// directory structure preserved.
func (c *extractCmd) Execute(_ []string) error {
	set, err := openArchives(c.Args.Archives)
	if err != nil {
		return err
	}
	defer set.Close()

	if !strings.ContainsAny(c.Pattern, "*?[") {
		data, err := set.OpenNewest(c.Pattern)
		if err != nil {
			return err
		}
		outputPath := filepath.Join(c.Output, filepath.Base(strings.ReplaceAll(c.Pattern, "\\", "/")))
		if err := writeOutput(outputPath, data); err != nil {
			return err
		}
		fmt.Printf("Extracted: %s (%s)\n", outputPath, humanize.Bytes(uint64(len(data))))
		return nil
	}

	files, err := set.List(c.Pattern)
	if err != nil {
		return err
	}
	extracted := 0
	for _, f := range files {
		data, err := set.OpenNewest(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}
		outputPath := filepath.Join(c.Output, filepath.FromSlash(strings.ReplaceAll(f, "\\", "/")))
		if err := writeOutput(outputPath, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}
		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
	}
	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

type searchCmd struct {
	Limit int `short:"n" long:"limit" default:"50" description:"Limit results (0 = all)"`
	Args  struct {
		Term     string   `positional-arg-name:"term"`
		Archives []string `positional-arg-name:"archive" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints entries whose path contains the search term.
func (c *searchCmd) Execute(_ []string) error {
	set, err := openArchives(c.Args.Archives)
	if err != nil {
		return err
	}
	defer set.Close()

	files, err := set.List("")
	if err != nil {
		return err
	}
	term := strings.ToLower(c.Args.Term)

	count := 0
	for _, f := range files {
		if !strings.Contains(strings.ToLower(f), term) {
			continue
		}
		fmt.Println(f)
		count++
		if c.Limit > 0 && count >= c.Limit {
			fmt.Fprintf(os.Stderr, "\n(showing first %d matches, use -n 0 for all)\n", c.Limit)
			break
		}
	}

	if count == 0 {
		fmt.Fprintln(os.Stderr, "No files found")
	} else if c.Limit == 0 || count < c.Limit {
		fmt.Fprintf(os.Stderr, "\n(%d files found)\n", count)
	}
	return nil
}
