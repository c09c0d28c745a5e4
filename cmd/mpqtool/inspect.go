package main

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Faultbox/mapgen/internal/extract"
	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/pkg/dbc"
)

type dbcCmd struct {
	Rows    int  `short:"n" long:"rows" default:"10" description:"Records to print (0 = all)"`
	Strings bool `short:"s" long:"strings" description:"Resolve fields as string offsets where possible"`
	Args    struct {
		File string `positional-arg-name:"file.dbc"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints the table header and the leading records.
func (c *dbcCmd) Execute(_ []string) error {
	f, err := dbc.ParseFile(c.Args.File)
	if err != nil {
		return err
	}

	fmt.Printf("Table:   %s\n", c.Args.File)
	fmt.Printf("Records: %d\n", f.RecordCount())
	fmt.Printf("Fields:  %d\n", f.FieldCount())
	fmt.Printf("Strings: %s\n", humanize.Bytes(uint64(f.StringSize())))
	fmt.Printf("Max ID:  %d\n", f.MaxID())
	fmt.Println()

	n := f.RecordCount()
	if c.Rows > 0 && c.Rows < n {
		n = c.Rows
	}
	for i := 0; i < n; i++ {
		r := f.Record(i)
		fmt.Printf("%6d:", i)
		for field := 0; field < f.FieldCount(); field++ {
			v := r.Uint32(field)
			if s := r.String(field); c.Strings && field > 0 && v != 0 && s != "" {
				fmt.Printf(" %q", s)
				continue
			}
			fmt.Printf(" %d", v)
		}
		fmt.Println()
	}
	return nil
}

type mapCmd struct {
	Args struct {
		Files []string `positional-arg-name:"file.map" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints the section layout of each map file.
func (c *mapCmd) Execute(_ []string) error {
	for _, path := range c.Args.Files {
		f, err := mapfile.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		h := f.Layout()

		fmt.Printf("%s: version %q build %d, %s\n", path, f.VersionMagic[:], f.BuildNumber, humanize.Bytes(uint64(h.TotalSize())))
		if f.Area.Grid == nil {
			fmt.Printf("  area:   uniform 0x%04x\n", f.Area.Area)
		} else {
			fmt.Printf("  area:   grid\n")
		}
		fmt.Printf("  height: %s [%g, %g]\n", f.Height.Encoding, f.Height.Min, f.Height.Max)
		if l := f.Liquid; l != nil {
			kind := "mixed"
			if l.NoType {
				kind = fmt.Sprintf("uniform flags 0x%02x", l.Type)
			}
			fmt.Printf("  liquid: %s, box %d,%d %dx%d, level %g\n", kind, l.OffsetX, l.OffsetY, l.Width, l.Height, l.Level)
		} else {
			fmt.Printf("  liquid: none\n")
		}
	}
	return nil
}

type reportCmd struct {
	Args struct {
		File string `positional-arg-name:"extract-report.yaml"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints per-map tile counts from a run report.
func (c *reportCmd) Execute(_ []string) error {
	r, err := extract.ReadReport(c.Args.File)
	if err != nil {
		return err
	}
	fmt.Printf("Client:  %s build %d\n", r.Generation, r.Build)
	if len(r.Locales) > 0 {
		fmt.Printf("Locales: %v\n", r.Locales)
	}
	fmt.Printf("Tables:  %d\n", r.DBCCount())
	fmt.Printf("Tiles:   %d\n", r.TileCount())
	fmt.Printf("Finished %s\n", humanize.Time(r.Finished))
	fmt.Println()
	for _, m := range r.Maps {
		fmt.Printf("  %4d %-24s %4d/%-4d tiles %s\n", m.ID, m.Name, m.Written, m.Tiles, m.Human)
	}
	return nil
}
