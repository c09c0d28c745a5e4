package tables

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mapgen/pkg/dbc"
)

// AreaTable.dbc field layout.
const (
	areaFieldID   = 0
	areaFieldFlag = 3
)

// AreaTable maps area ids to the area flag written into map files.
type AreaTable struct {
	flags   []uint16
	present []bool
	maxID   uint32
	count   int
}

// MaxAreaID bounds the ids an area table accepts. Client tables stay far below it.
const MaxAreaID = 1 << 20

// ErrAreaID is returned for area ids above MaxAreaID.
var ErrAreaID = errors.New("area id out of range")

func newAreaTable(maxID uint32) (*AreaTable, error) {
	if maxID > MaxAreaID {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrAreaID, maxID, MaxAreaID)
	}
	return &AreaTable{
		flags:   make([]uint16, int(maxID)+1),
		present: make([]bool, int(maxID)+1),
		maxID:   maxID,
	}, nil
}

// NewAreaTable builds a table from an id to flag mapping.
func NewAreaTable(flags map[uint32]uint16) (*AreaTable, error) {
	var maxID uint32
	for id := range flags {
		maxID = max(maxID, id)
	}
	t, err := newAreaTable(maxID)
	if err != nil {
		return nil, err
	}
	for id, flag := range flags {
		t.set(id, flag)
	}
	return t, nil
}

func loadAreas(f *dbc.File) (*AreaTable, error) {
	t, err := newAreaTable(f.MaxID())
	if err != nil {
		return nil, err
	}
	for i := 0; i < f.RecordCount(); i++ {
		r := f.Record(i)
		t.set(r.Uint32(areaFieldID), uint16(r.Uint32(areaFieldFlag)))
	}
	return t, nil
}

func (t *AreaTable) set(id uint32, flag uint16) {
	if !t.present[id] {
		t.count++
	}
	t.flags[id] = flag
	t.present[id] = true
}

// MaxID returns the highest area id in the table.
func (t *AreaTable) MaxID() uint32 { return t.maxID }

// Len returns the number of distinct area ids.
func (t *AreaTable) Len() int { return t.count }

// Flag returns the flag of area id. Ids above MaxID are never dereferenced.
func (t *AreaTable) Flag(id uint32) (uint16, bool) {
	if id > t.maxID || !t.present[id] {
		return 0, false
	}
	return t.flags[id], true
}
