// Package mapfile defines the packed terrain map format written for the server.
//
// A map file is a fixed header followed by four sections in order: area,
// height, an optional liquid section and holes. Every section starts with its
// own small header whose flags select a conditional sub-layout. All values are
// little-endian with no padding.
package mapfile

import (
	"errors"
	"fmt"
)

// Section tags.
const (
	Magic       = "MAPS"
	AreaMagic   = "AREA"
	HeightMagic = "MHGT"
	LiquidMagic = "MLIQ"
)

// Grid dimensions.
const (
	Cells      = 16
	FineSize   = 128
	CoarseSize = FineSize + 1
)

// Fixed section sizes in bytes.
const (
	HeaderSize       = 11 * 4
	AreaHeaderSize   = 4 + 2 + 2
	HeightHeaderSize = 4 + 4 + 4 + 4
	LiquidHeaderSize = 4 + 2 + 2 + 4*1 + 4
	HolesSize        = Cells * Cells * 2
	areaGridSize     = Cells * Cells * 2
	liquidTypeSize   = Cells*Cells*2 + Cells*Cells
)

// Area section flags.
const (
	AreaNoArea uint16 = 0x0001
)

// Height section flags.
const (
	HeightNoHeight uint32 = 0x0001
	HeightAsInt16  uint32 = 0x0002
	HeightAsInt8   uint32 = 0x0004
)

// Liquid section flags.
const (
	LiquidNoType   uint16 = 0x0001
	LiquidNoHeight uint16 = 0x0002
)

// UnknownArea is written for cells whose area could not be resolved.
const UnknownArea uint16 = 0xFFFF

// Map file errors.
var (
	ErrInvalidMagic = errors.New("invalid map file magic")
	ErrTruncated    = errors.New("truncated map file")
	ErrLayout       = errors.New("section layout mismatch")
)

// FourCC converts a four character tag to its on-disk bytes.
func FourCC(tag string) ([4]byte, error) {
	var b [4]byte
	if len(tag) != 4 {
		return b, fmt.Errorf("tag %q must be exactly four bytes", tag)
	}
	copy(b[:], tag)
	return b, nil
}

func mustFourCC(tag string) [4]byte {
	b, err := FourCC(tag)
	if err != nil {
		panic(err)
	}
	return b
}

// Header is the fixed file header. Offsets are from the start of the file;
// a zero offset means the section is absent and always comes with a zero size.
type Header struct {
	Magic        [4]byte
	VersionMagic [4]byte
	BuildNumber  uint32
	AreaOffset   uint32
	AreaSize     uint32
	HeightOffset uint32
	HeightSize   uint32
	LiquidOffset uint32
	LiquidSize   uint32
	HolesOffset  uint32
	HolesSize    uint32
}

// AreaSection stores per-cell area flags. When every cell shares one value
// the grid is elided and only Area is stored.
type AreaSection struct {
	Area uint16
	Grid *[Cells][Cells]uint16 // nil when elided
}

// Flags returns the on-disk flags.
func (a *AreaSection) Flags() uint16 {
	if a.Grid == nil {
		return AreaNoArea
	}
	return 0
}

// Size returns the encoded size in bytes.
func (a *AreaSection) Size() uint32 {
	if a.Grid == nil {
		return AreaHeaderSize
	}
	return AreaHeaderSize + areaGridSize
}

// At returns the area flag of cell (x, y).
func (a *AreaSection) At(x, y int) uint16 {
	if a.Grid == nil {
		return a.Area
	}
	return a.Grid[y][x]
}

// LiquidSection stores the cropped liquid box of a tile.
type LiquidSection struct {
	NoType   bool
	NoHeight bool

	// Type is the liquid flag shared by every cell when NoType is set.
	Type uint16

	OffsetX, OffsetY uint8
	Width, Height    uint8
	Level            float32

	// Entries and CellFlags are nil when NoType is set.
	Entries   *[Cells][Cells]uint16
	CellFlags *[Cells][Cells]uint8

	// Heights is the Width*Height box, row-major. Nil when NoHeight is set.
	Heights []float32
}

// Flags returns the on-disk flags.
func (l *LiquidSection) Flags() uint16 {
	var f uint16
	if l.NoType {
		f |= LiquidNoType
	}
	if l.NoHeight {
		f |= LiquidNoHeight
	}
	return f
}

// Size returns the encoded size in bytes.
func (l *LiquidSection) Size() uint32 {
	size := uint32(LiquidHeaderSize)
	if !l.NoType {
		size += liquidTypeSize
	}
	if !l.NoHeight {
		size += uint32(l.Width) * uint32(l.Height) * 4
	}
	return size
}

// HeightAt returns the liquid height at box-relative position (x, y).
func (l *LiquidSection) HeightAt(x, y int) float32 {
	if l.NoHeight {
		return l.Level
	}
	return l.Heights[y*int(l.Width)+x]
}

// File is one packed map tile.
type File struct {
	VersionMagic [4]byte
	BuildNumber  uint32

	Area   AreaSection
	Height HeightSection
	Liquid *LiquidSection // nil when the tile has no liquid
	Holes  [Cells][Cells]uint16
}

// Layout computes the file header. Sections are chained with a running
// cursor: area follows the header, height follows area, liquid (if any)
// follows height, and holes come last.
func (f *File) Layout() Header {
	h := Header{
		Magic:        mustFourCC(Magic),
		VersionMagic: f.VersionMagic,
		BuildNumber:  f.BuildNumber,
	}

	h.AreaOffset = HeaderSize
	h.AreaSize = f.Area.Size()

	h.HeightOffset = h.AreaOffset + h.AreaSize
	h.HeightSize = f.Height.Size()

	next := h.HeightOffset + h.HeightSize
	if f.Liquid != nil {
		h.LiquidOffset = next
		h.LiquidSize = f.Liquid.Size()
		next = h.LiquidOffset + h.LiquidSize
	}

	h.HolesOffset = next
	h.HolesSize = HolesSize
	return h
}

// TotalSize returns the encoded size of the whole file.
func (h Header) TotalSize() uint32 {
	return HeaderSize + h.AreaSize + h.HeightSize + h.LiquidSize + h.HolesSize
}
