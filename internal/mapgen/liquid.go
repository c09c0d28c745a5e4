package mapgen

import (
	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/internal/tables"
	"github.com/Faultbox/mapgen/pkg/formats"
)

// Liquid entry ids assigned from legacy cell flags.
const (
	legacyEntryWater = 1
	legacyEntryOcean = 2
	legacyEntryMagma = 3
)

// readLegacyLiquid applies the per-cell MCLQ chunks. The entry id comes from
// the cell flags and is kept even when no position is marked as liquid.
func (c *Converter) readLegacyLiquid(ctx *Context, tile *formats.ADT, log *zap.Logger) {
	bits := c.Options.Liquid
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			cell := tile.Cells[i][j]
			if cell == nil || cell.Liquid == nil {
				continue
			}
			liquid := cell.Liquid

			count := 0
			for y := 0; y < cellSize; y++ {
				for x := 0; x < cellSize; x++ {
					f := liquid.Flags[y][x]
					if f == formats.LegacyLiquidDry {
						continue
					}
					ctx.liquidShow[i*cellSize+y][j*cellSize+x] = true
					if f&formats.LegacyLiquidDark != 0 {
						ctx.liquidFlags[i][j] |= bits.DarkWater
					}
					count++
				}
			}

			if cell.Flags&formats.CellFlagRiver != 0 {
				ctx.liquidEntry[i][j] = legacyEntryWater
				ctx.liquidFlags[i][j] |= bits.Water
			}
			if cell.Flags&formats.CellFlagOcean != 0 {
				ctx.liquidEntry[i][j] = legacyEntryOcean
				ctx.liquidFlags[i][j] |= bits.Ocean
			}
			if cell.Flags&formats.CellFlagMagma != 0 {
				ctx.liquidEntry[i][j] = legacyEntryMagma
				ctx.liquidFlags[i][j] |= bits.Magma
			}

			if count == 0 && ctx.liquidFlags[i][j] != 0 {
				log.Warn("Liquid flags set without liquid positions",
					zap.String("chunk", "MCLQ"), zap.Int("cell_x", j), zap.Int("cell_y", i))
			}

			for y := 0; y <= cellSize; y++ {
				for x := 0; x <= cellSize; x++ {
					ctx.liquidHeight[i*cellSize+y][j*cellSize+x] = liquid.Heights[y][x]
				}
			}
		}
	}
}

// readModernLiquid applies the tile MH2O chunk on top of the legacy results.
func (c *Converter) readModernLiquid(ctx *Context, tile *formats.ADT, log *zap.Logger) {
	if tile.Liquid == nil {
		return
	}
	bits := c.Options.Liquid
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			inst := tile.Liquid.Instances[i][j]
			if inst == nil {
				continue
			}
			baseY := i*cellSize + int(inst.YOffset)
			baseX := j*cellSize + int(inst.XOffset)

			count := 0
			for y := 0; y < int(inst.Height); y++ {
				for x := 0; x < int(inst.Width); x++ {
					if inst.Shown(x, y) {
						ctx.liquidShow[baseY+y][baseX+x] = true
						count++
					}
				}
			}

			ctx.liquidEntry[i][j] = inst.LiquidType
			category, ok := c.Tables.Liquids.Category(uint32(inst.LiquidType))
			if ok {
				ctx.liquidFlags[i][j] |= bits.For(category)
			} else {
				log.Warn("Unknown liquid type",
					zap.Uint16("liquid_type", inst.LiquidType), zap.Int("cell_x", j), zap.Int("cell_y", i))
			}
			if ok && category == tables.Ocean && !inst.HasLightMap {
				ctx.liquidFlags[i][j] |= bits.DarkWater
			}

			if count == 0 && ctx.liquidFlags[i][j] != 0 {
				log.Warn("Liquid flags set without liquid positions",
					zap.String("chunk", "MH2O"), zap.Int("cell_x", j), zap.Int("cell_y", i))
			}

			for y := 0; y <= int(inst.Height); y++ {
				for x := 0; x <= int(inst.Width); x++ {
					ctx.liquidHeight[baseY+y][baseX+x] = inst.HeightAt(x, y)
				}
			}
		}
	}
}

// packLiquid crops the liquid grid to the tight box around shown positions.
// It returns nil when no cell carries a liquid entry or flag.
func (c *Converter) packLiquid(ctx *Context) *mapfile.LiquidSection {
	if !hasLiquid(ctx) {
		return nil
	}

	floor := c.Options.MinHeight
	minX, minY, maxX, maxY := fineSize, fineSize, -1, -1
	var lo, hi float32
	for y := 0; y < fineSize; y++ {
		for x := 0; x < fineSize; x++ {
			if !ctx.liquidShow[y][x] {
				ctx.liquidHeight[y][x] = floor
				continue
			}
			h := ctx.liquidHeight[y][x]
			if maxX < 0 {
				lo, hi = h, h
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			lo, hi = min(lo, h), max(hi, h)
		}
	}

	l := &mapfile.LiquidSection{}
	if maxX < 0 {
		l.Level = floor
		l.NoHeight = true
	} else {
		// Heights are sampled at corners, so the box gains one trailing edge.
		l.OffsetX, l.OffsetY = uint8(minX), uint8(minY)
		l.Width = uint8(maxX - minX + 2)
		l.Height = uint8(maxY - minY + 2)
		l.Level = lo
		l.NoHeight = hi == lo || (c.Options.AllowFloatToInt && hi-lo < c.Options.FlatLiquidDelta)
	}

	if uniformLiquidType(ctx) {
		l.NoType = true
		l.Type = uint16(ctx.liquidFlags[0][0])
	} else {
		entries, flags := ctx.liquidEntry, ctx.liquidFlags
		l.Entries, l.CellFlags = &entries, &flags
	}

	if !l.NoHeight {
		w, h := int(l.Width), int(l.Height)
		l.Heights = make([]float32, 0, w*h)
		for y := 0; y < h; y++ {
			row := ctx.liquidHeight[int(l.OffsetY)+y]
			l.Heights = append(l.Heights, row[int(l.OffsetX):int(l.OffsetX)+w]...)
		}
	}
	return l
}

func hasLiquid(ctx *Context) bool {
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			if ctx.liquidEntry[y][x] != 0 || ctx.liquidFlags[y][x] != 0 {
				return true
			}
		}
	}
	return false
}

// uniformLiquidType reports whether every cell shares one entry and flag pair.
func uniformLiquidType(ctx *Context) bool {
	entry, flags := ctx.liquidEntry[0][0], ctx.liquidFlags[0][0]
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			if ctx.liquidEntry[y][x] != entry || ctx.liquidFlags[y][x] != flags {
				return false
			}
		}
	}
	return true
}
