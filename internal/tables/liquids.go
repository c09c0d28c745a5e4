package tables

import "github.com/Faultbox/mapgen/pkg/dbc"

// LiquidType.dbc field layout.
const (
	liquidFieldID   = 0
	liquidFieldType = 3
)

// Category is a liquid classification.
type Category uint8

// Liquid categories.
const (
	NoWater Category = iota
	Water
	Ocean
	Magma
	Slime
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case NoWater:
		return "none"
	case Water:
		return "water"
	case Ocean:
		return "ocean"
	case Magma:
		return "magma"
	case Slime:
		return "slime"
	default:
		return "unknown"
	}
}

// categoryFromType converts the LiquidType.dbc type column.
func categoryFromType(t uint32) (Category, bool) {
	switch t {
	case 0:
		return Water, true
	case 1:
		return Ocean, true
	case 2:
		return Magma, true
	case 3:
		return Slime, true
	default:
		return NoWater, false
	}
}

// LiquidTable maps liquid type ids to categories.
type LiquidTable struct {
	categories map[uint32]Category
}

// NewLiquidTable builds a table from an id to category mapping.
func NewLiquidTable(categories map[uint32]Category) *LiquidTable {
	t := &LiquidTable{categories: make(map[uint32]Category, len(categories))}
	for id, c := range categories {
		t.categories[id] = c
	}
	return t
}

func loadLiquids(f *dbc.File) *LiquidTable {
	t := &LiquidTable{categories: make(map[uint32]Category, f.RecordCount())}
	for i := 0; i < f.RecordCount(); i++ {
		r := f.Record(i)
		if c, ok := categoryFromType(r.Uint32(liquidFieldType)); ok {
			t.categories[r.Uint32(liquidFieldID)] = c
		}
	}
	return t
}

// Len returns the number of mapped liquid types.
func (t *LiquidTable) Len() int { return len(t.categories) }

// Category returns the category of liquid type id.
func (t *LiquidTable) Category(id uint32) (Category, bool) {
	c, ok := t.categories[id]
	return c, ok
}
