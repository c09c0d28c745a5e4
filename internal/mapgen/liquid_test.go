package mapgen

import (
	"testing"

	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/pkg/formats"
)

// dryLiquid returns a legacy liquid chunk with every position dry.
func dryLiquid(height float32) *formats.LegacyLiquid {
	l := &formats.LegacyLiquid{MinHeight: height, MaxHeight: height}
	for y := range l.Flags {
		for x := range l.Flags[y] {
			l.Flags[y][x] = formats.LegacyLiquidDry
		}
	}
	for y := range l.Heights {
		for x := range l.Heights[y] {
			l.Heights[y][x] = height
		}
	}
	return l
}

func TestConvert_LegacyLiquid(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	tile := flatTile(42, 0)

	cell := tile.Cells[2][3]
	cell.Flags = formats.CellFlagOcean
	cell.Liquid = dryLiquid(7)
	cell.Liquid.Flags[4][1] = 0x04
	cell.Liquid.Flags[4][2] = 0x04
	cell.Liquid.Flags[6][5] = 0x04 | formats.LegacyLiquidDark
	cell.Liquid.Heights[6][5] = 9

	f := convert(t, c, tile)
	l := f.Liquid
	if l == nil {
		t.Fatal("expected liquid section")
	}
	if l.OffsetX != 25 || l.OffsetY != 20 || l.Width != 6 || l.Height != 4 {
		t.Errorf("unexpected box %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
	if l.NoHeight || l.NoType {
		t.Errorf("expected full liquid section, got flags 0x%x", l.Flags())
	}
	if l.Level != 7 {
		t.Errorf("expected level 7, got %f", l.Level)
	}
	if len(l.Heights) != 6*4 {
		t.Fatalf("expected 24 heights, got %d", len(l.Heights))
	}
	if l.HeightAt(0, 0) != 7 || l.HeightAt(4, 2) != 9 {
		t.Errorf("unexpected shown heights %f %f", l.HeightAt(0, 0), l.HeightAt(4, 2))
	}
	if l.HeightAt(2, 0) != -500 {
		t.Errorf("positions without liquid should hold the floor, got %f", l.HeightAt(2, 0))
	}
	if l.Entries[2][3] != 2 {
		t.Errorf("expected ocean entry 2, got %d", l.Entries[2][3])
	}
	if l.CellFlags[2][3] != ModernLiquidFlags.Ocean|ModernLiquidFlags.DarkWater {
		t.Errorf("expected ocean and dark flags, got 0x%x", l.CellFlags[2][3])
	}
	if l.Entries[0][0] != 0 || l.CellFlags[0][0] != 0 {
		t.Error("cells without liquid should stay zero")
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warnings: %v", logs.All())
	}
}

func TestConvert_LegacyLiquidFlagLayout(t *testing.T) {
	opts := DefaultOptions()
	opts.Liquid = LegacyLiquidFlags
	c, _ := testConverter(opts)

	tile := flatTile(42, 0)
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			cell := tile.Cells[y][x]
			cell.Flags = formats.CellFlagMagma
			cell.Liquid = dryLiquid(-20)
			cell.Liquid.Flags[0][0] = 0
		}
	}

	f := convert(t, c, tile)
	l := f.Liquid
	if l == nil {
		t.Fatal("expected liquid section")
	}
	if !l.NoType || l.Type != uint16(LegacyLiquidFlags.Magma) {
		t.Errorf("expected uniform magma type 0x%x, got notype=%v type=0x%x", LegacyLiquidFlags.Magma, l.NoType, l.Type)
	}
	if !l.NoHeight || l.Level != -20 {
		t.Errorf("expected flat level -20, got noheight=%v level=%f", l.NoHeight, l.Level)
	}
	if l.OffsetX != 0 || l.OffsetY != 0 || l.Width != 122 || l.Height != 122 {
		t.Errorf("unexpected box %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
}

func TestConvert_LegacyLiquidWithoutPositions(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Cells[0][0].Flags = formats.CellFlagRiver
	tile.Cells[0][0].Liquid = dryLiquid(3)

	f := convert(t, c, tile)
	if logs.FilterMessage("Liquid flags set without liquid positions").Len() != 1 {
		t.Errorf("expected one anomaly warning, got %v", logs.All())
	}

	l := f.Liquid
	if l == nil {
		t.Fatal("the entry id is kept, so the liquid section must be present")
	}
	if l.Entries[0][0] != 1 || l.CellFlags[0][0] != ModernLiquidFlags.Water {
		t.Errorf("expected water entry, got %d/0x%x", l.Entries[0][0], l.CellFlags[0][0])
	}
	if l.Width != 0 || l.Height != 0 || !l.NoHeight || l.Level != -500 {
		t.Errorf("expected empty box at the floor, got %dx%d level %f", l.Width, l.Height, l.Level)
	}
}

func TestConvert_ModernLiquid(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Liquid = &formats.MH2O{}
	tile.Liquid.Instances[1][1] = &formats.LiquidInstance{
		LiquidType:   liquidOcean,
		HeightLevel1: 12,
		XOffset:      2,
		YOffset:      1,
		Width:        3,
		Height:       2,
		Show:         0x3F,
	}

	f := convert(t, c, tile)
	l := f.Liquid
	if l == nil {
		t.Fatal("expected liquid section")
	}
	if l.OffsetX != 10 || l.OffsetY != 9 || l.Width != 4 || l.Height != 3 {
		t.Errorf("unexpected box %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
	if !l.NoHeight || l.Level != 12 || l.Heights != nil {
		t.Errorf("expected flat level 12, got noheight=%v level=%f", l.NoHeight, l.Level)
	}
	if l.NoType {
		t.Fatal("a single liquid cell should keep the type grids")
	}
	if l.Entries[1][1] != liquidOcean {
		t.Errorf("expected entry %d, got %d", liquidOcean, l.Entries[1][1])
	}
	if l.CellFlags[1][1] != ModernLiquidFlags.Ocean|ModernLiquidFlags.DarkWater {
		t.Errorf("ocean without light map should be dark, got 0x%x", l.CellFlags[1][1])
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warnings: %v", logs.All())
	}

	tile.Liquid.Instances[1][1].HasLightMap = true
	f = convert(t, c, tile)
	if f.Liquid.CellFlags[1][1] != ModernLiquidFlags.Ocean {
		t.Errorf("ocean with light map should not be dark, got 0x%x", f.Liquid.CellFlags[1][1])
	}
}

func TestConvert_ModernLiquidShowMask(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Liquid = &formats.MH2O{}
	// 4x4 window, only bits 5 (1,1) and 10 (2,2) set.
	tile.Liquid.Instances[0][0] = &formats.LiquidInstance{
		LiquidType: liquidWater,
		Width:      4,
		Height:     4,
		Show:       1<<5 | 1<<10,
		Heights:    make([]float32, 25),
	}
	for i := range tile.Liquid.Instances[0][0].Heights {
		tile.Liquid.Instances[0][0].Heights[i] = float32(i)
	}

	f := convert(t, c, tile)
	l := f.Liquid
	if l.OffsetX != 1 || l.OffsetY != 1 || l.Width != 3 || l.Height != 3 {
		t.Errorf("expected box tight around shown bits, got %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
	// Corner heights come from the (w+1)x(h+1) array: index y*5+x.
	if l.Level != 6 || l.HeightAt(0, 0) != 6 || l.HeightAt(1, 1) != 12 {
		t.Errorf("unexpected heights level=%f %f %f", l.Level, l.HeightAt(0, 0), l.HeightAt(1, 1))
	}
	if l.HeightAt(1, 0) != -500 {
		t.Errorf("unshown position should hold the floor, got %f", l.HeightAt(1, 0))
	}
	if l.HeightAt(2, 2) != -500 {
		t.Errorf("unshown trailing corner inside the grid should hold the floor, got %f", l.HeightAt(2, 2))
	}
}

func TestConvert_UnknownLiquidType(t *testing.T) {
	c, logs := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Liquid = &formats.MH2O{}
	tile.Liquid.Instances[5][5] = &formats.LiquidInstance{
		LiquidType: 99, Width: 1, Height: 1, Show: 1, HeightLevel1: 4,
	}

	f := convert(t, c, tile)
	if logs.FilterMessage("Unknown liquid type").Len() != 1 {
		t.Errorf("expected unknown liquid warning, got %v", logs.All())
	}
	l := f.Liquid
	if l == nil {
		t.Fatal("expected liquid section for the non-zero entry")
	}
	if l.Entries[5][5] != 99 || l.CellFlags[5][5] != 0 {
		t.Errorf("expected entry 99 without category bits, got %d/0x%x", l.Entries[5][5], l.CellFlags[5][5])
	}
	if l.OffsetX != 40 || l.OffsetY != 40 || l.Width != 2 || l.Height != 2 {
		t.Errorf("unexpected box %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
}

func TestConvert_UniformModernLiquid(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Liquid = &formats.MH2O{}
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			heights := make([]float32, 81)
			for k := range heights {
				heights[k] = float32(i)
			}
			tile.Liquid.Instances[i][j] = &formats.LiquidInstance{
				LiquidType: liquidWater, Width: 8, Height: 8, Show: ^uint64(0), Heights: heights,
			}
		}
	}

	f := convert(t, c, tile)
	l := f.Liquid
	if !l.NoType || l.Type != uint16(ModernLiquidFlags.Water) || l.Entries != nil {
		t.Errorf("expected uniform water type, got notype=%v type=%d", l.NoType, l.Type)
	}
	if l.OffsetX != 0 || l.OffsetY != 0 || l.Width != 129 || l.Height != 129 {
		t.Errorf("expected full 129x129 box, got %d,%d %dx%d", l.OffsetX, l.OffsetY, l.Width, l.Height)
	}
	if l.NoHeight || len(l.Heights) != 129*129 {
		t.Fatalf("expected full height box, got %d heights", len(l.Heights))
	}
	if l.HeightAt(0, 0) != 0 || l.HeightAt(0, 8) != 1 || l.HeightAt(128, 128) != 15 {
		t.Errorf("unexpected heights %f %f %f", l.HeightAt(0, 0), l.HeightAt(0, 8), l.HeightAt(128, 128))
	}
}

func TestConvert_LiquidFlatPacking(t *testing.T) {
	tile := flatTile(42, 0)
	tile.Liquid = &formats.MH2O{}
	tile.Liquid.Instances[0][0] = &formats.LiquidInstance{
		LiquidType: liquidWater, Width: 2, Height: 1, Show: 0x3,
		Heights: []float32{5, 5.0005, 5, 5, 5, 5},
	}

	c, _ := testConverter(DefaultOptions())
	if f := convert(t, c, tile); f.Liquid.NoHeight {
		t.Error("unpacked output should keep a non-flat liquid box")
	}

	opts := DefaultOptions()
	opts.AllowFloatToInt = true
	c, _ = testConverter(opts)
	f := convert(t, c, tile)
	if !f.Liquid.NoHeight || f.Liquid.Level != 5 {
		t.Errorf("expected flat liquid at 5, got noheight=%v level=%f", f.Liquid.NoHeight, f.Liquid.Level)
	}
}

func TestConvert_ModernOverridesLegacy(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	tile := flatTile(42, 0)
	tile.Cells[0][0].Flags = formats.CellFlagRiver
	tile.Cells[0][0].Liquid = dryLiquid(1)
	tile.Cells[0][0].Liquid.Flags[0][0] = 0
	tile.Liquid = &formats.MH2O{}
	tile.Liquid.Instances[0][0] = &formats.LiquidInstance{
		LiquidType: liquidMagma, Width: 1, Height: 1, Show: 1, HeightLevel1: 30,
	}

	f := convert(t, c, tile)
	l := f.Liquid
	if l.Entries[0][0] != liquidMagma {
		t.Errorf("expected modern entry to win, got %d", l.Entries[0][0])
	}
	if l.CellFlags[0][0] != ModernLiquidFlags.Water|ModernLiquidFlags.Magma {
		t.Errorf("expected accumulated flags, got 0x%x", l.CellFlags[0][0])
	}
	if l.Level != 30 || !l.NoHeight {
		t.Errorf("expected modern height 30, got %f", l.Level)
	}
}

func TestConvert_ContextReuse(t *testing.T) {
	c, _ := testConverter(DefaultOptions())
	ctx := NewContext()

	wet := flatTile(5, 0)
	wet.Liquid = &formats.MH2O{}
	wet.Liquid.Instances[3][3] = &formats.LiquidInstance{LiquidType: liquidWater, Width: 2, Height: 2, Show: 0xF}
	wet.Cells[7][7].Holes = 0x1

	if _, err := c.Convert(ctx, "wet", wet); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	f, err := c.Convert(ctx, "dry", flatTile(42, 100))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if f.Liquid != nil {
		t.Error("liquid leaked from the previous tile")
	}
	if f.Holes[7][7] != 0 {
		t.Error("holes leaked from the previous tile")
	}
	if f.Area.Grid != nil || f.Area.Area != 42 {
		t.Errorf("expected elided area 42, got %+v", f.Area)
	}
	if f.Height.Encoding != mapfile.HeightFlat {
		t.Errorf("expected flat height, got %s", f.Height.Encoding)
	}
}
