package mapgen

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/internal/tables"
	"github.com/Faultbox/mapgen/pkg/formats"
)

const (
	liquidWater = 1
	liquidOcean = 2
	liquidMagma = 3
)

func testTables() *tables.Tables {
	areas, err := tables.NewAreaTable(map[uint32]uint16{
		5:  0x50,
		42: 42,
		77: 0x1234,
	})
	if err != nil {
		panic(err)
	}
	return &tables.Tables{
		Areas: areas,
		Liquids: tables.NewLiquidTable(map[uint32]tables.Category{
			liquidWater: tables.Water,
			liquidOcean: tables.Ocean,
			liquidMagma: tables.Magma,
		}),
	}
}

func testConverter(opts Options) (*Converter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return NewConverter(testTables(), opts, zap.New(core)), logs
}

// flatTile creates a tile where every cell has the same area and base height.
func flatTile(area uint32, base float32) *formats.ADT {
	tile := &formats.ADT{Version: 18}
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			tile.Cells[y][x] = &formats.ADTCell{
				IX: uint32(x), IY: uint32(y),
				AreaID:     area,
				BaseHeight: base,
				Heights:    new([formats.CellVertices]float32),
			}
		}
	}
	return tile
}

// slopeTile creates a tile whose height rises linearly along x from lo to hi.
func slopeTile(lo, hi float32) *formats.ADT {
	tile := flatTile(42, lo)
	slope := (hi - lo) / fineSize
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			h := tile.Cells[i][j].Heights
			for y := 0; y <= cellSize; y++ {
				for x := 0; x <= cellSize; x++ {
					h[y*17+x] = slope * float32(j*cellSize+x)
				}
			}
			for y := 0; y < cellSize; y++ {
				for x := 0; x < cellSize; x++ {
					h[y*17+9+x] = slope * (float32(j*cellSize+x) + 0.5)
				}
			}
		}
	}
	return tile
}

func convert(t *testing.T, c *Converter, tile *formats.ADT) *mapfile.File {
	t.Helper()
	f, err := c.Convert(NewContext(), "test.adt", tile)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if uint32(len(data)) != f.Layout().TotalSize() {
		t.Fatalf("encoded %d bytes, header declares %d", len(data), f.Layout().TotalSize())
	}
	return f
}

func TestConvert_UniformFlatTile(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	f := convert(t, c, flatTile(42, 100))

	if f.Area.Grid != nil || f.Area.Area != 42 || f.Area.Flags() != mapfile.AreaNoArea {
		t.Errorf("expected elided area 42, got %+v", f.Area)
	}
	if f.Height.Encoding != mapfile.HeightFlat || f.Height.Min != 100 || f.Height.Max != 100 {
		t.Errorf("expected flat height at 100, got %s %f..%f", f.Height.Encoding, f.Height.Min, f.Height.Max)
	}
	if f.Liquid != nil {
		t.Error("expected no liquid section")
	}
	h := f.Layout()
	if h.LiquidOffset != 0 || h.LiquidSize != 0 {
		t.Errorf("expected liquid offset/size 0, got %d/%d", h.LiquidOffset, h.LiquidSize)
	}
	if f.Holes != [mapfile.Cells][mapfile.Cells]uint16{} {
		t.Error("expected zero holes")
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warnings: %v", logs.All())
	}
}

func TestConvert_UnknownAreaKeepsFullGrid(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	tile := flatTile(5, 0)
	tile.Cells[3][3].AreaID = 99999

	f := convert(t, c, tile)
	if f.Area.Grid == nil {
		t.Fatal("expected full area grid")
	}
	if f.Area.Area != 0 || f.Area.Flags() != 0 {
		t.Errorf("full grid should carry no single value, got %d flags %d", f.Area.Area, f.Area.Flags())
	}
	if f.Area.At(3, 3) != mapfile.UnknownArea {
		t.Errorf("expected unknown sentinel at 3,3, got 0x%x", f.Area.At(3, 3))
	}
	if f.Area.At(0, 0) != 0x50 || f.Area.At(15, 15) != 0x50 {
		t.Error("expected area 5 flag elsewhere")
	}
	if logs.FilterMessage("Unknown area id").Len() != 1 {
		t.Errorf("expected one unknown area warning, got %d", logs.Len())
	}
}

func TestConvert_AbsentCells(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(77, 50)
	tile.Cells[0][0] = nil
	tile.Cells[15][15].Holes = 0xFFFF0003

	f := convert(t, c, tile)
	if f.Area.At(0, 0) != mapfile.UnknownArea || f.Area.At(1, 0) != 0x1234 {
		t.Error("absent cell should have the unknown area")
	}
	if f.Height.Encoding != mapfile.HeightFloat || f.Height.Min != 0 || f.Height.Max != 50 {
		t.Errorf("absent cell should contribute zero heights, got %s %f..%f", f.Height.Encoding, f.Height.Min, f.Height.Max)
	}
	if f.Height.Coarse[0][0] != 0 || f.Height.Fine[7][7] != 0 || f.Height.Fine[8][8] != 50 {
		t.Error("unexpected grid contents around the absent cell")
	}
	if f.Holes[15][15] != 0x0003 || f.Holes[0][0] != 0 {
		t.Errorf("unexpected holes %x %x", f.Holes[15][15], f.Holes[0][0])
	}
}

func TestConvert_HeightOffsetsAreAdditive(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(42, 20)
	tile.Cells[2][1].Heights[0] = 5  // coarse (8, 16)
	tile.Cells[2][1].Heights[9] = -3 // fine (8, 16)
	tile.Cells[0][0].Heights = nil

	f := convert(t, c, tile)
	if f.Height.Encoding != mapfile.HeightFloat {
		t.Fatalf("expected float encoding, got %s", f.Height.Encoding)
	}
	if f.Height.Coarse[16][8] != 25 || f.Height.Fine[16][8] != 17 {
		t.Errorf("expected 25/17, got %f/%f", f.Height.Coarse[16][8], f.Height.Fine[16][8])
	}
	if f.Height.Coarse[1][1] != 20 {
		t.Errorf("cell without MCVT should stay at base, got %f", f.Height.Coarse[1][1])
	}
	if f.Height.Min != 17 || f.Height.Max != 25 {
		t.Errorf("unexpected range %f..%f", f.Height.Min, f.Height.Max)
	}
}

func TestConvert_HeightEncodingSelection(t *testing.T) {
	packed := DefaultOptions()
	packed.AllowFloatToInt = true

	tests := []struct {
		name     string
		opts     Options
		lo, hi   float32
		encoding mapfile.HeightEncoding
	}{
		{"uint8", packed, 10, 11.5, mapfile.HeightUint8},
		{"uint16", packed, 10, 1010, mapfile.HeightUint16},
		{"float beyond int16 limit", packed, 0, 3000, mapfile.HeightFloat},
		{"nearly flat", packed, 10, 10.004, mapfile.HeightFlat},
		{"packing disabled", DefaultOptions(), 10, 11.5, mapfile.HeightFloat},
		{"nearly flat unpacked", DefaultOptions(), 10, 10.004, mapfile.HeightFloat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := testConverter(tc.opts)
			f := convert(t, c, slopeTile(tc.lo, tc.hi))
			if f.Height.Encoding != tc.encoding {
				t.Fatalf("expected %s, got %s", tc.encoding, f.Height.Encoding)
			}
			if f.Height.Min != tc.lo {
				t.Errorf("expected min %f, got %f", tc.lo, f.Height.Min)
			}
		})
	}
}

func TestConvert_QuantizedRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowFloatToInt = true
	c, _ := testConverter(opts)

	for _, r := range [][2]float32{{10, 11.5}, {-20, 600}} {
		tile := slopeTile(r[0], r[1])
		f := convert(t, c, tile)

		scale := f.Height.Scale()
		want := f.Height.Encoding.MaxValue() / (f.Height.Max - f.Height.Min)
		if scale != want {
			t.Errorf("expected scale %f, got %f", want, scale)
		}
		if f.Height.Encoding == mapfile.HeightUint8 && scale != 255/float32(1.5) {
			t.Errorf("expected scale 255/1.5, got %f", scale)
		}

		ref := NewContext()
		c.readHeights(ref, tile)
		tolerance := float64(1/scale) + 1e-4
		for y := 0; y < coarseSize; y++ {
			for x := 0; x < coarseSize; x++ {
				if d := math.Abs(float64(f.Height.CoarseAt(x, y) - ref.coarse[y][x])); d > tolerance {
					t.Fatalf("coarse %d,%d off by %f (limit %f)", x, y, d, tolerance)
				}
			}
		}
		for y := 0; y < fineSize; y++ {
			for x := 0; x < fineSize; x++ {
				if d := math.Abs(float64(f.Height.FineAt(x, y) - ref.fine[y][x])); d > tolerance {
					t.Fatalf("fine %d,%d off by %f (limit %f)", x, y, d, tolerance)
				}
			}
		}
	}
}

func TestConvert_HeightFloor(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(42, -1000)
	tile.Cells[4][4].Heights[0] = 1200 // 200

	f := convert(t, c, tile)
	if f.Height.Min != -500 || f.Height.Max != 200 {
		t.Errorf("expected clamped range -500..200, got %f..%f", f.Height.Min, f.Height.Max)
	}
	if f.Height.Coarse[0][0] != -500 || f.Height.Fine[100][100] != -500 {
		t.Error("samples below the floor should be raised to it")
	}

	tile = flatTile(42, -1000)
	f = convert(t, c, tile)
	if f.Height.Encoding != mapfile.HeightFlat || f.Height.Min != -500 || f.Height.Max != -500 {
		t.Errorf("expected flat floor, got %s %f..%f", f.Height.Encoding, f.Height.Min, f.Height.Max)
	}

	opts := DefaultOptions()
	opts.AllowHeightLimit = false
	c, _ = testConverter(opts)
	f = convert(t, c, flatTile(42, -1000))
	if f.Height.Min != -1000 {
		t.Errorf("expected unclamped -1000, got %f", f.Height.Min)
	}
}

func TestConvert_NilTile(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	if _, err := c.Convert(NewContext(), "x", nil); err != ErrNoTile {
		t.Errorf("expected ErrNoTile, got %v", err)
	}
	if _, err := c.Convert(nil, "x", flatTile(1, 0)); err != ErrNoTile {
		t.Errorf("expected ErrNoTile for nil context, got %v", err)
	}
}

func TestConvert_HeaderFields(t *testing.T) {
	opts := DefaultOptions()
	opts.Build = 12340
	opts.VersionMagic = [4]byte{'v', '1', '.', '4'}
	c, _ := testConverter(opts)

	f := convert(t, c, flatTile(42, 0))
	h := f.Layout()
	if string(h.Magic[:]) != "MAPS" || string(h.VersionMagic[:]) != "v1.4" || h.BuildNumber != 12340 {
		t.Errorf("unexpected header %+v", h)
	}
}
