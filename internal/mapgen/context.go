package mapgen

import (
	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/pkg/formats"
)

const (
	cells      = formats.CellsPerTile
	cellSize   = formats.CellSize
	fineSize   = mapfile.FineSize
	coarseSize = mapfile.CoarseSize
)

// Context holds the working grids of one tile conversion. It is owned by the
// caller, reused across tiles and cleared at the start of every Convert.
// A Context must not be shared by concurrent conversions.
type Context struct {
	areas  [cells][cells]uint16
	coarse [coarseSize][coarseSize]float32
	fine   [fineSize][fineSize]float32

	liquidEntry  [cells][cells]uint16
	liquidFlags  [cells][cells]uint8
	liquidShow   [fineSize][fineSize]bool
	liquidHeight [coarseSize][coarseSize]float32

	holes [cells][cells]uint16
}

// NewContext allocates a conversion context.
func NewContext() *Context {
	return &Context{}
}

func (c *Context) reset() {
	*c = Context{}
}
