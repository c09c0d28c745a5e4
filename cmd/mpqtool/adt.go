package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/mapgen/pkg/formats"
)

type adtCmd struct {
	Liquid bool `short:"q" long:"liquid" description:"List per-cell liquid bounds and light data"`
	Args   struct {
		File string `positional-arg-name:"file.adt"`
	} `positional-args:"yes" required:"yes"`
}

// Execute parses a terrain tile and prints its cell and liquid summary.
func (c *adtCmd) Execute(_ []string) error {
	a, err := formats.ParseADTFile(c.Args.File)
	if err != nil {
		return err
	}
	fmt.Printf("Tile: %s\n", c.Args.File)
	describeADT(os.Stdout, a, c.Liquid)
	return nil
}

// describeADT writes the cell count and liquid layout of a tile. With cells
// set it adds one line per liquid cell.
func describeADT(w io.Writer, a *formats.ADT, cells bool) {
	var legacy, modern, lightMaps int
	for y := range a.Cells {
		for x, cell := range a.Cells[y] {
			if cell == nil || cell.Liquid == nil {
				continue
			}
			legacy++
			if cells {
				l := cell.Liquid
				fmt.Fprintf(w, "  MCLQ %2d,%2d  height [%g, %g]  light %d\n",
					y, x, l.MinHeight, l.MaxHeight, legacyLight(l))
			}
		}
	}
	if a.Liquid != nil {
		for y := range a.Liquid.Instances {
			for x, inst := range a.Liquid.Instances[y] {
				if inst == nil {
					continue
				}
				modern++
				if inst.HasLightMap {
					lightMaps++
				}
				if cells {
					fmt.Fprintf(w, "  MH2O %2d,%2d  type %d  levels [%g, %g]  window %d,%d %dx%d  light map %d bytes\n",
						y, x, inst.LiquidType, inst.HeightLevel1, inst.HeightLevel2,
						inst.XOffset, inst.YOffset, inst.Width, inst.Height, len(inst.LightMap))
				}
			}
		}
	}
	fmt.Fprintf(w, "Cells:  %d\n", a.CellCount())
	fmt.Fprintf(w, "MCLQ:   %d cells\n", legacy)
	fmt.Fprintf(w, "MH2O:   %d cells, %d with light map\n", modern, lightMaps)
}

// legacyLight returns the largest vertex light value of a legacy liquid chunk.
func legacyLight(l *formats.LegacyLiquid) uint32 {
	var peak uint32
	for y := range l.Light {
		for _, v := range l.Light[y] {
			peak = max(peak, v)
		}
	}
	return peak
}
