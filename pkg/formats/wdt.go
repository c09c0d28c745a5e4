package formats

import (
	"errors"
	"fmt"
	"os"
)

// WDT format errors.
var (
	ErrInvalidWDTMagic  = errors.New("invalid WDT magic: expected 'MVER'")
	ErrTruncatedWDTData = errors.New("truncated WDT data")
	ErrMissingWDTMain   = errors.New("WDT has no MAIN chunk")
)

// WDTSize is the number of tiles per world side.
const WDTSize = 64

// wdtTileExists is the MAIN entry flag for a tile that has an ADT file.
const wdtTileExists = 0x1

// WDT represents a parsed world tile index.
type WDT struct {
	Version uint32
	Flags   uint32 // MPHD flags, 0 when the chunk is absent

	// Tiles holds the MAIN entry flags indexed [y][x].
	Tiles [WDTSize][WDTSize]uint32
}

// HasTile reports whether the tile at column x, row y has terrain.
func (w *WDT) HasTile(x, y int) bool {
	if x < 0 || y < 0 || x >= WDTSize || y >= WDTSize {
		return false
	}
	return w.Tiles[y][x]&wdtTileExists != 0
}

// TileCount returns the number of tiles with terrain.
func (w *WDT) TileCount() int {
	n := 0
	for y := 0; y < WDTSize; y++ {
		for x := 0; x < WDTSize; x++ {
			if w.HasTile(x, y) {
				n++
			}
		}
	}
	return n
}

// ParseWDT parses a WDT file from raw bytes.
func ParseWDT(data []byte) (*WDT, error) {
	if len(data) < 12 {
		return nil, ErrTruncatedWDTData
	}

	c := newCursor(data)
	mver, err := c.chunk()
	if err != nil || mver.ID != "MVER" {
		return nil, ErrInvalidWDTMagic
	}
	version, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedWDTData)
	}

	wdt := &WDT{Version: version}

	var main *chunkHeader
	scanChunks(data, func(h chunkHeader) bool {
		switch h.ID {
		case "MPHD":
			if fc, err := c.at(h.dataOffset()); err == nil {
				wdt.Flags, _ = fc.u32()
			}
		case "MAIN":
			hh := h
			main = &hh
			return false
		}
		return true
	})
	if main == nil {
		return nil, ErrMissingWDTMain
	}

	mc, _ := c.at(main.dataOffset())
	for y := 0; y < WDTSize; y++ {
		for x := 0; x < WDTSize; x++ {
			flags, err := mc.u32()
			if err != nil {
				return nil, fmt.Errorf("%w: reading MAIN entry %d,%d", ErrTruncatedWDTData, x, y)
			}
			if err := mc.skip(4); err != nil {
				return nil, fmt.Errorf("%w: reading MAIN entry %d,%d", ErrTruncatedWDTData, x, y)
			}
			wdt.Tiles[y][x] = flags
		}
	}

	return wdt, nil
}

// ParseWDTFile parses a WDT file from disk.
func ParseWDTFile(path string) (*WDT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading WDT file: %w", err)
	}
	return ParseWDT(data)
}
