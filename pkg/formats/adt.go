package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// ADT format errors.
var (
	ErrInvalidADTMagic    = errors.New("invalid ADT magic: expected 'MVER'")
	ErrTruncatedADTData   = errors.New("truncated ADT data")
	ErrMissingCellIndex   = errors.New("ADT has no cell index")
	ErrInvalidLiquidRange = errors.New("liquid window exceeds cell bounds")
)

// Tile geometry shared by every supported client generation.
const (
	CellsPerTile   = 16                      // cells per tile side
	CellSize       = 8                       // fine-grid quads per cell side
	GridSize       = CellsPerTile * CellSize // fine grid side (128)
	CellVertices   = (CellSize+1)*(CellSize+1) + CellSize*CellSize
	cellCount      = CellsPerTile * CellsPerTile
	mcnkHeaderSize = 128
)

// Legacy liquid sub-chunks whose declared size is at or below this are placeholders.
const minLegacyLiquidSize = 8

// Cell flag bits.
const (
	CellFlagRiver = 1 << 2
	CellFlagOcean = 1 << 3
	CellFlagMagma = 1 << 4
)

// LegacyLiquidDry marks a sub-cell with no liquid in a legacy liquid chunk.
const LegacyLiquidDry = 0x0F

// LegacyLiquidDark is the sub-cell flag bit for dark water.
const LegacyLiquidDark = 1 << 7

// Modern liquid instance format flags.
const (
	LiquidFormatFullLight = 0x01
	LiquidFormatNoHeight  = 0x02
)

// ADTCell is one terrain cell (an MCNK chunk).
type ADTCell struct {
	Flags      uint32
	IX, IY     uint32
	AreaID     uint32
	Holes      uint32
	BaseHeight float32 // cell base elevation

	// Heights holds interleaved height offsets from BaseHeight: each row is
	// 9 coarse samples followed by 8 fine samples. Nil when the cell has no MCVT.
	Heights *[CellVertices]float32

	// Liquid is nil when the cell carries no usable legacy liquid data.
	Liquid *LegacyLiquid
}

// CoarseHeight returns the coarse (corner) offset at local position (x, y), 0..8.
func (c *ADTCell) CoarseHeight(x, y int) float32 {
	if c.Heights == nil {
		return 0
	}
	return c.Heights[y*(CellSize*2+1)+x]
}

// FineHeight returns the fine (center) offset at local position (x, y), 0..7.
func (c *ADTCell) FineHeight(x, y int) float32 {
	if c.Heights == nil {
		return 0
	}
	return c.Heights[y*(CellSize*2+1)+CellSize+1+x]
}

// LegacyLiquid is the pre-WotLK per-cell liquid chunk (MCLQ).
type LegacyLiquid struct {
	MinHeight float32
	MaxHeight float32
	Light     [CellSize + 1][CellSize + 1]uint32
	Heights   [CellSize + 1][CellSize + 1]float32
	Flags     [CellSize][CellSize]uint8
}

// LiquidInstance is the liquid description of one cell in an MH2O chunk.
type LiquidInstance struct {
	LiquidType   uint16
	FormatFlags  uint16
	HeightLevel1 float32
	HeightLevel2 float32
	XOffset      uint8
	YOffset      uint8
	Width        uint8
	Height       uint8

	// Show is a bit-per-position mask over Width*Height, row-major, LSB first.
	Show uint64

	// Heights has (Width+1)*(Height+1) entries, or is nil when the instance is flat.
	Heights []float32

	// HasLightMap reports whether the instance references a per-position light map.
	HasLightMap bool
	LightMap    []uint8
}

// Shown reports whether position (x, y) of the instance window is marked as liquid.
func (l *LiquidInstance) Shown(x, y int) bool {
	bit := y*int(l.Width) + x
	if bit >= 64 {
		return false
	}
	return l.Show&(1<<uint(bit)) != 0
}

// HeightAt returns the liquid height at corner position (x, y), 0..Width / 0..Height.
func (l *LiquidInstance) HeightAt(x, y int) float32 {
	if l.Heights == nil {
		return l.HeightLevel1
	}
	return l.Heights[y*(int(l.Width)+1)+x]
}

// MH2O holds the tile-wide modern liquid data, indexed like ADT.Cells.
type MH2O struct {
	Instances [CellsPerTile][CellsPerTile]*LiquidInstance
}

// ADT represents a parsed terrain tile.
type ADT struct {
	Version uint32
	Cells   [CellsPerTile][CellsPerTile]*ADTCell // nil for absent cells
	Liquid  *MH2O                                // nil when the tile has no MH2O chunk
}

// Cell returns the cell at row y, column x, or nil if out of range or absent.
func (a *ADT) Cell(y, x int) *ADTCell {
	if x < 0 || y < 0 || x >= CellsPerTile || y >= CellsPerTile {
		return nil
	}
	return a.Cells[y][x]
}

// CellCount returns the number of present cells.
func (a *ADT) CellCount() int {
	n := 0
	for y := range a.Cells {
		for x := range a.Cells[y] {
			if a.Cells[y][x] != nil {
				n++
			}
		}
	}
	return n
}

// ParseADT parses an ADT tile from raw bytes.
func ParseADT(data []byte) (*ADT, error) {
	if len(data) < 12 {
		return nil, ErrTruncatedADTData
	}

	c := newCursor(data)
	mver, err := c.chunk()
	if err != nil || mver.ID != "MVER" {
		return nil, ErrInvalidADTMagic
	}
	version, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedADTData)
	}

	adt := &ADT{Version: version}

	var mhdr, mh2o *chunkHeader
	var mcnks []chunkHeader
	scanChunks(data, func(h chunkHeader) bool {
		switch h.ID {
		case "MHDR":
			if mhdr == nil {
				hh := h
				mhdr = &hh
			}
		case "MH2O":
			if mh2o == nil {
				hh := h
				mh2o = &hh
			}
		case "MCNK":
			mcnks = append(mcnks, h)
		}
		return true
	})

	offsets, err := cellOffsets(c, mhdr, mcnks)
	if err != nil {
		return nil, err
	}

	if mhdr != nil {
		if off, ok := mhdrOffset(c, mhdr, 40); ok {
			if h, err := chunkAt(c, off, "MH2O"); err == nil {
				mh2o = &h
			}
		}
	}

	for i, off := range offsets {
		if off == 0 {
			continue
		}
		cell, err := parseMCNK(c, off)
		if err != nil {
			return nil, fmt.Errorf("parsing cell %d: %w", i, err)
		}
		adt.Cells[i/CellsPerTile][i%CellsPerTile] = cell
	}

	if mh2o != nil {
		liquid, err := parseMH2O(c, *mh2o)
		if err != nil {
			return nil, fmt.Errorf("parsing MH2O: %w", err)
		}
		adt.Liquid = liquid
	}

	return adt, nil
}

// ParseADTFile parses an ADT file from disk.
func ParseADTFile(path string) (*ADT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ADT file: %w", err)
	}
	return ParseADT(data)
}

// mhdrOffset returns an absolute offset from the MHDR field at byte position field.
// MHDR offsets are relative to the start of the MHDR payload.
func mhdrOffset(c *cursor, mhdr *chunkHeader, field int) (int, bool) {
	fc, err := c.at(mhdr.dataOffset() + field)
	if err != nil {
		return 0, false
	}
	v, err := fc.u32()
	if err != nil || v == 0 {
		return 0, false
	}
	return mhdr.dataOffset() + int(v), true
}

func chunkAt(c *cursor, offset int, id string) (chunkHeader, error) {
	cc, err := c.at(offset)
	if err != nil {
		return chunkHeader{}, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
	}
	h, err := cc.expectChunk(id)
	if err != nil {
		if errors.Is(err, errOutOfBounds) {
			return chunkHeader{}, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
		}
		return chunkHeader{}, err
	}
	return h, nil
}

// cellOffsets resolves the absolute MCNK offset of every cell, row-major.
// Tiles without an MCIN index (Cataclysm and later) use the MCNK chunks in file order.
func cellOffsets(c *cursor, mhdr *chunkHeader, mcnks []chunkHeader) ([cellCount]int, error) {
	var offsets [cellCount]int

	if mhdr != nil {
		if off, ok := mhdrOffset(c, mhdr, 4); ok {
			mcin, err := chunkAt(c, off, "MCIN")
			if err != nil {
				return offsets, err
			}
			ic, _ := c.at(mcin.dataOffset())
			for i := 0; i < cellCount; i++ {
				cellOff, err := ic.u32()
				if err != nil {
					return offsets, fmt.Errorf("%w: reading MCIN entry %d", ErrTruncatedADTData, i)
				}
				if err := ic.skip(12); err != nil {
					return offsets, fmt.Errorf("%w: reading MCIN entry %d", ErrTruncatedADTData, i)
				}
				offsets[i] = int(cellOff)
			}
			return offsets, nil
		}
	}

	if len(mcnks) == 0 {
		return offsets, ErrMissingCellIndex
	}
	for i, h := range mcnks {
		if i >= cellCount {
			break
		}
		offsets[i] = h.Offset
	}
	return offsets, nil
}

// parseMCNK parses the cell chunk at an absolute offset.
// Sub-chunk offsets inside the MCNK header are relative to the MCNK chunk start.
func parseMCNK(c *cursor, offset int) (*ADTCell, error) {
	h, err := chunkAt(c, offset, "MCNK")
	if err != nil {
		return nil, err
	}
	hc, _ := c.at(h.dataOffset())
	header, err := hc.take(mcnkHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading MCNK header", ErrTruncatedADTData)
	}
	le := binary.LittleEndian
	field := func(pos int) uint32 { return le.Uint32(header[pos:]) }

	cell := &ADTCell{
		Flags:      field(0),
		IX:         field(4),
		IY:         field(8),
		AreaID:     field(52),
		Holes:      field(60),
		BaseHeight: math.Float32frombits(field(112)),
	}

	offsMCVT := int(field(20))
	offsMCLQ := int(field(96))
	sizeMCLQ := field(100)

	if offsMCVT != 0 {
		heights, err := parseMCVT(c, offset+offsMCVT)
		if err != nil {
			return nil, err
		}
		cell.Heights = heights
	} else if sub, ok := findSubChunk(c, h, "MCVT"); ok {
		heights, err := parseMCVT(c, sub.Offset)
		if err != nil {
			return nil, err
		}
		cell.Heights = heights
	}

	if offsMCLQ != 0 && sizeMCLQ > minLegacyLiquidSize {
		liquid, err := parseMCLQ(c, offset+offsMCLQ)
		if err != nil {
			return nil, err
		}
		cell.Liquid = liquid
	}

	return cell, nil
}

// findSubChunk scans the sub-chunks following the MCNK header.
func findSubChunk(c *cursor, mcnk chunkHeader, id string) (chunkHeader, bool) {
	start := mcnk.dataOffset() + mcnkHeaderSize
	end := mcnk.dataOffset() + int(mcnk.Size)
	if end > len(c.data) {
		end = len(c.data)
	}
	if start >= end {
		return chunkHeader{}, false
	}
	var found chunkHeader
	ok := false
	scanChunks(c.data[start:end], func(h chunkHeader) bool {
		if h.ID == id {
			found = h
			found.Offset += start
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

func parseMCVT(c *cursor, offset int) (*[CellVertices]float32, error) {
	h, err := chunkAt(c, offset, "MCVT")
	if err != nil {
		return nil, err
	}
	vc, _ := c.at(h.dataOffset())
	var heights [CellVertices]float32
	if err := vc.f32s(heights[:]); err != nil {
		return nil, fmt.Errorf("%w: reading MCVT", ErrTruncatedADTData)
	}
	return &heights, nil
}

func parseMCLQ(c *cursor, offset int) (*LegacyLiquid, error) {
	h, err := chunkAt(c, offset, "MCLQ")
	if err != nil {
		return nil, err
	}
	lc, _ := c.at(h.dataOffset())
	liquid := &LegacyLiquid{}

	if liquid.MinHeight, err = lc.f32(); err != nil {
		return nil, fmt.Errorf("%w: reading MCLQ min height", ErrTruncatedADTData)
	}
	if liquid.MaxHeight, err = lc.f32(); err != nil {
		return nil, fmt.Errorf("%w: reading MCLQ max height", ErrTruncatedADTData)
	}
	for y := 0; y <= CellSize; y++ {
		for x := 0; x <= CellSize; x++ {
			if liquid.Light[y][x], err = lc.u32(); err != nil {
				return nil, fmt.Errorf("%w: reading MCLQ vertex %d,%d", ErrTruncatedADTData, x, y)
			}
			if liquid.Heights[y][x], err = lc.f32(); err != nil {
				return nil, fmt.Errorf("%w: reading MCLQ vertex %d,%d", ErrTruncatedADTData, x, y)
			}
		}
	}
	flags, err := lc.take(CellSize * CellSize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading MCLQ flags", ErrTruncatedADTData)
	}
	for y := 0; y < CellSize; y++ {
		copy(liquid.Flags[y][:], flags[y*CellSize:(y+1)*CellSize])
	}
	return liquid, nil
}

// parseMH2O parses the modern liquid chunk. All offsets inside it are relative to its payload.
func parseMH2O(c *cursor, h chunkHeader) (*MH2O, error) {
	base := h.dataOffset()
	hc, err := c.at(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
	}

	liquid := &MH2O{}
	for i := 0; i < cellCount; i++ {
		offsData1, err := hc.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading MH2O entry %d", ErrTruncatedADTData, i)
		}
		used, err := hc.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading MH2O entry %d", ErrTruncatedADTData, i)
		}
		if err := hc.skip(4); err != nil {
			return nil, fmt.Errorf("%w: reading MH2O entry %d", ErrTruncatedADTData, i)
		}
		if used == 0 || offsData1 == 0 {
			continue
		}
		inst, err := parseLiquidInstance(c, base, int(offsData1))
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		liquid.Instances[i/CellsPerTile][i%CellsPerTile] = inst
	}
	return liquid, nil
}

func parseLiquidInstance(c *cursor, base, offset int) (*LiquidInstance, error) {
	ic, err := c.at(base + offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
	}
	raw, err := ic.take(24)
	if err != nil {
		return nil, fmt.Errorf("%w: reading liquid header", ErrTruncatedADTData)
	}
	le := binary.LittleEndian
	inst := &LiquidInstance{
		LiquidType:   le.Uint16(raw[0:]),
		FormatFlags:  le.Uint16(raw[2:]),
		HeightLevel1: math.Float32frombits(le.Uint32(raw[4:])),
		HeightLevel2: math.Float32frombits(le.Uint32(raw[8:])),
		XOffset:      raw[12],
		YOffset:      raw[13],
		Width:        raw[14],
		Height:       raw[15],
	}
	offsData2a := int(le.Uint32(raw[16:]))
	offsData2b := int(le.Uint32(raw[20:]))

	if int(inst.XOffset)+int(inst.Width) > CellSize || int(inst.YOffset)+int(inst.Height) > CellSize {
		return nil, fmt.Errorf("%w: offset %d,%d size %dx%d", ErrInvalidLiquidRange,
			inst.XOffset, inst.YOffset, inst.Width, inst.Height)
	}

	inst.Show = ^uint64(0)
	if offsData2a != 0 {
		sc, err := c.at(base + offsData2a)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
		}
		n := (int(inst.Width)*int(inst.Height) + 7) / 8
		mask, err := sc.take(n)
		if err != nil {
			return nil, fmt.Errorf("%w: reading liquid show mask", ErrTruncatedADTData)
		}
		inst.Show = 0
		for i, b := range mask {
			inst.Show |= uint64(b) << (8 * uint(i))
		}
	}

	vertices := (int(inst.Width) + 1) * (int(inst.Height) + 1)
	if inst.FormatFlags&LiquidFormatNoHeight == 0 && offsData2b != 0 {
		vc, err := c.at(base + offsData2b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedADTData, err)
		}
		inst.Heights = make([]float32, vertices)
		if err := vc.f32s(inst.Heights); err != nil {
			return nil, fmt.Errorf("%w: reading liquid heights", ErrTruncatedADTData)
		}
	}

	if inst.FormatFlags&LiquidFormatFullLight == 0 && offsData2b != 0 {
		inst.HasLightMap = true
		lightOff := base + offsData2b
		if inst.FormatFlags&LiquidFormatNoHeight == 0 {
			lightOff += vertices * 4
		}
		if lc, err := c.at(lightOff); err == nil {
			if lm, err := lc.take(vertices); err == nil {
				inst.LightMap = lm
			}
		}
	}

	return inst, nil
}
