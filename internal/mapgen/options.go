package mapgen

import "github.com/Faultbox/mapgen/internal/tables"

// LiquidFlags assigns the per-cell liquid flag bits written to map files.
// The bit layout differs between client generations.
type LiquidFlags struct {
	Water     uint8
	Ocean     uint8
	Magma     uint8
	Slime     uint8
	DarkWater uint8
}

// Liquid flag layouts.
var (
	// LegacyLiquidFlags is used by Classic and TBC servers.
	LegacyLiquidFlags = LiquidFlags{Magma: 0x01, Ocean: 0x02, Slime: 0x04, Water: 0x08, DarkWater: 0x10}
	// ModernLiquidFlags is used from WotLK on.
	ModernLiquidFlags = LiquidFlags{Water: 0x01, Ocean: 0x02, Magma: 0x04, Slime: 0x08, DarkWater: 0x10}
)

// For returns the flag bit of a liquid category.
func (f LiquidFlags) For(c tables.Category) uint8 {
	switch c {
	case tables.Water:
		return f.Water
	case tables.Ocean:
		return f.Ocean
	case tables.Magma:
		return f.Magma
	case tables.Slime:
		return f.Slime
	default:
		return 0
	}
}

// Options controls the encoding decisions of the converter.
type Options struct {
	VersionMagic [4]byte
	Build        uint32

	// AllowHeightLimit clamps heights below MinHeight up to MinHeight.
	AllowHeightLimit bool
	// MinHeight is the height floor. It is also the height written for
	// liquid grid positions that hold no liquid.
	MinHeight float32

	// AllowFloatToInt enables flat elision and integer height packing.
	AllowFloatToInt bool
	FlatHeightDelta float32
	FlatLiquidDelta float32
	Int8Limit       float32
	Int16Limit      float32

	Liquid LiquidFlags
}

// DefaultOptions returns the standard thresholds with float packing disabled.
func DefaultOptions() Options {
	return Options{
		AllowHeightLimit: true,
		MinHeight:        -500,
		AllowFloatToInt:  false,
		FlatHeightDelta:  0.005,
		FlatLiquidDelta:  0.001,
		Int8Limit:        2,
		Int16Limit:       2048,
		Liquid:           ModernLiquidFlags,
	}
}
