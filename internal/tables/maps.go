package tables

import "github.com/Faultbox/mapgen/pkg/dbc"

// Map.dbc field layout.
const (
	mapFieldID   = 0
	mapFieldName = 1
)

// MapEntry is one row of the map table. Name is the directory name of the
// map under World\Maps.
type MapEntry struct {
	ID   uint32
	Name string
}

func loadMaps(f *dbc.File) []MapEntry {
	maps := make([]MapEntry, f.RecordCount())
	for i := range maps {
		r := f.Record(i)
		maps[i] = MapEntry{ID: r.Uint32(mapFieldID), Name: r.String(mapFieldName)}
	}
	return maps
}
