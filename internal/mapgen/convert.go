// Package mapgen converts parsed terrain tiles into packed map files.
package mapgen

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/internal/tables"
	"github.com/Faultbox/mapgen/pkg/formats"
)

// ErrNoTile is returned when Convert is called without a tile or context.
var ErrNoTile = errors.New("no tile to convert")

// Converter turns ADT tiles into map files using the reference tables.
type Converter struct {
	Tables  *tables.Tables
	Options Options
	Log     *zap.Logger
}

// NewConverter creates a converter.
func NewConverter(t *tables.Tables, opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{Tables: t, Options: opts, Log: log}
}

// Convert runs every pass over tile and returns the packed file. name is
// only used to label warnings.
func (c *Converter) Convert(ctx *Context, name string, tile *formats.ADT) (*mapfile.File, error) {
	if ctx == nil || tile == nil {
		return nil, ErrNoTile
	}
	ctx.reset()
	log := c.Log.With(zap.String("tile", name))

	f := &mapfile.File{
		VersionMagic: c.Options.VersionMagic,
		BuildNumber:  c.Options.Build,
	}

	c.readAreas(ctx, tile, log)
	f.Area = packAreas(ctx)

	c.readHeights(ctx, tile)
	f.Height = c.packHeights(ctx)

	c.readLegacyLiquid(ctx, tile, log)
	c.readModernLiquid(ctx, tile, log)
	f.Liquid = c.packLiquid(ctx)

	readHoles(ctx, tile)
	f.Holes = ctx.holes

	return f, nil
}

func (c *Converter) readAreas(ctx *Context, tile *formats.ADT, log *zap.Logger) {
	areas := c.Tables.Areas
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			ctx.areas[y][x] = mapfile.UnknownArea

			cell := tile.Cells[y][x]
			if cell == nil || cell.AreaID == 0 {
				continue
			}
			if flag, ok := areas.Flag(cell.AreaID); ok {
				ctx.areas[y][x] = flag
				continue
			}
			log.Warn("Unknown area id",
				zap.Uint32("area_id", cell.AreaID),
				zap.Uint32("max_area_id", areas.MaxID()),
				zap.Uint32("ix", cell.IX),
				zap.Uint32("iy", cell.IY))
		}
	}
}

// packAreas elides the grid when every cell carries the same flag.
func packAreas(ctx *Context) mapfile.AreaSection {
	first := ctx.areas[0][0]
	for y := range ctx.areas {
		for x := range ctx.areas[y] {
			if ctx.areas[y][x] != first {
				grid := ctx.areas
				return mapfile.AreaSection{Grid: &grid}
			}
		}
	}
	return mapfile.AreaSection{Area: first}
}

func readHoles(ctx *Context, tile *formats.ADT) {
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			if cell := tile.Cells[y][x]; cell != nil {
				ctx.holes[y][x] = uint16(cell.Holes)
			}
		}
	}
}
