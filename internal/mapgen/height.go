package mapgen

import (
	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/pkg/formats"
)

// readHeights fills the coarse and fine grids with each cell's base height
// plus its MCVT offsets. Absent cells stay at zero.
func (c *Converter) readHeights(ctx *Context, tile *formats.ADT) {
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			cell := tile.Cells[i][j]
			if cell == nil {
				continue
			}
			for y := 0; y <= cellSize; y++ {
				for x := 0; x <= cellSize; x++ {
					ctx.coarse[i*cellSize+y][j*cellSize+x] = cell.BaseHeight + cell.CoarseHeight(x, y)
				}
			}
			for y := 0; y < cellSize; y++ {
				for x := 0; x < cellSize; x++ {
					ctx.fine[i*cellSize+y][j*cellSize+x] = cell.BaseHeight + cell.FineHeight(x, y)
				}
			}
		}
	}
}

// heightRange returns the min and max over both grids.
func heightRange(ctx *Context) (lo, hi float32) {
	lo, hi = ctx.coarse[0][0], ctx.coarse[0][0]
	for y := range ctx.fine {
		for _, h := range ctx.fine[y] {
			lo, hi = min(lo, h), max(hi, h)
		}
	}
	for y := range ctx.coarse {
		for _, h := range ctx.coarse[y] {
			lo, hi = min(lo, h), max(hi, h)
		}
	}
	return lo, hi
}

// clampHeights raises every sample below floor to floor.
func clampHeights(ctx *Context, floor float32) {
	for y := range ctx.fine {
		for x := range ctx.fine[y] {
			ctx.fine[y][x] = max(ctx.fine[y][x], floor)
		}
	}
	for y := range ctx.coarse {
		for x := range ctx.coarse[y] {
			ctx.coarse[y][x] = max(ctx.coarse[y][x], floor)
		}
	}
}

// selectHeightEncoding picks the storage of a height range.
func (o Options) selectHeightEncoding(lo, hi float32) mapfile.HeightEncoding {
	diff := hi - lo
	switch {
	case hi == lo:
		return mapfile.HeightFlat
	case !o.AllowFloatToInt:
		return mapfile.HeightFloat
	case diff < o.FlatHeightDelta:
		return mapfile.HeightFlat
	case diff < o.Int8Limit:
		return mapfile.HeightUint8
	case diff < o.Int16Limit:
		return mapfile.HeightUint16
	default:
		return mapfile.HeightFloat
	}
}

func (c *Converter) packHeights(ctx *Context) mapfile.HeightSection {
	lo, hi := heightRange(ctx)

	if floor := c.Options.MinHeight; c.Options.AllowHeightLimit && lo < floor {
		clampHeights(ctx, floor)
		lo = floor
		hi = max(hi, floor)
	}

	h := mapfile.HeightSection{
		Encoding: c.Options.selectHeightEncoding(lo, hi),
		Min:      lo,
		Max:      hi,
	}

	switch h.Encoding {
	case mapfile.HeightUint8:
		step := h.Scale()
		h.Coarse8 = new([coarseSize][coarseSize]uint8)
		h.Fine8 = new([fineSize][fineSize]uint8)
		for y := range ctx.coarse {
			for x, v := range ctx.coarse[y] {
				h.Coarse8[y][x] = uint8(quantize(v, lo, step, 255))
			}
		}
		for y := range ctx.fine {
			for x, v := range ctx.fine[y] {
				h.Fine8[y][x] = uint8(quantize(v, lo, step, 255))
			}
		}
	case mapfile.HeightUint16:
		step := h.Scale()
		h.Coarse16 = new([coarseSize][coarseSize]uint16)
		h.Fine16 = new([fineSize][fineSize]uint16)
		for y := range ctx.coarse {
			for x, v := range ctx.coarse[y] {
				h.Coarse16[y][x] = uint16(quantize(v, lo, step, 65535))
			}
		}
		for y := range ctx.fine {
			for x, v := range ctx.fine[y] {
				h.Fine16[y][x] = uint16(quantize(v, lo, step, 65535))
			}
		}
	case mapfile.HeightFloat:
		coarse, fine := ctx.coarse, ctx.fine
		h.Coarse, h.Fine = &coarse, &fine
	}
	return h
}

// quantize rounds half up and clamps to [0, limit].
func quantize(v, lo, step, limit float32) uint32 {
	q := (v-lo)*step + 0.5
	if q <= 0 {
		return 0
	}
	if q >= limit {
		return uint32(limit)
	}
	return uint32(q)
}
