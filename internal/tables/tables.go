// Package tables loads the client reference tables the tile converter depends on.
package tables

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/pkg/dbc"
)

// Client table entry names.
const (
	MapDBC        = "DBFilesClient\\Map.dbc"
	AreaTableDBC  = "DBFilesClient\\AreaTable.dbc"
	LiquidTypeDBC = "DBFilesClient\\LiquidType.dbc"
)

// Source provides raw table bytes, typically an mpq.Set.
type Source interface {
	OpenNewest(name string) ([]byte, error)
}

// Tables holds the three lookup tables. They are immutable after Load.
type Tables struct {
	Maps    []MapEntry
	Areas   *AreaTable
	Liquids *LiquidTable
}

// Load reads Map, AreaTable and LiquidType from src. Any missing or
// malformed table is an error.
func Load(src Source, log *zap.Logger) (*Tables, error) {
	if log == nil {
		log = zap.NewNop()
	}

	mapFile, err := open(src, MapDBC)
	if err != nil {
		return nil, err
	}
	areaFile, err := open(src, AreaTableDBC)
	if err != nil {
		return nil, err
	}
	liquidFile, err := open(src, LiquidTypeDBC)
	if err != nil {
		return nil, err
	}

	areas, err := loadAreas(areaFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", AreaTableDBC, err)
	}

	t := &Tables{
		Maps:    loadMaps(mapFile),
		Areas:   areas,
		Liquids: loadLiquids(liquidFile),
	}

	log.Info("Reference tables loaded",
		zap.Int("maps", len(t.Maps)),
		zap.Int("areas", t.Areas.Len()),
		zap.Uint32("max_area_id", t.Areas.MaxID()),
		zap.Int("liquid_types", t.Liquids.Len()))

	return t, nil
}

func open(src Source, name string) (*dbc.File, error) {
	data, err := src.OpenNewest(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	f, err := dbc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return f, nil
}
