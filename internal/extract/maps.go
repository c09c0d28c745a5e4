package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/mapgen"
	"github.com/Faultbox/mapgen/internal/tables"
	"github.com/Faultbox/mapgen/pkg/formats"
	"github.com/Faultbox/mapgen/pkg/mpq"
)

// WDTPath returns the archive path of a map's tile index.
func WDTPath(mapName string) string {
	return fmt.Sprintf(`World\Maps\%s\%s.wdt`, mapName, mapName)
}

// ADTPath returns the archive path of the tile at column x, row y.
func ADTPath(mapName string, x, y int) string {
	return fmt.Sprintf(`World\Maps\%s\%s_%d_%d.adt`, mapName, mapName, x, y)
}

// MapFileName returns the output name of a tile: map id, row, column.
func MapFileName(mapID uint32, x, y int) string {
	return fmt.Sprintf("%04d%02d%02d.map", mapID, y, x)
}

// extractMaps converts every tile of every map listed in the map table.
func (e *Extractor) extractMaps(ctx context.Context, set *mpq.Set, opts mapgen.Options) ([]MapStat, error) {
	tbls, err := tables.Load(set, e.log)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}

	dir := filepath.Join(e.cfg.Paths.Output, "maps")
	conv := mapgen.NewConverter(tbls, opts, e.log)
	tileCtx := mapgen.NewContext()

	var stats []MapStat
	for i, m := range tbls.Maps {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		log := e.log.With(zap.Uint32("map_id", m.ID), zap.String("map", m.Name))

		data, err := set.OpenNewest(WDTPath(m.Name))
		if err != nil {
			log.Warn("Missing tile index, skipping map", zap.Error(err))
			continue
		}
		wdt, err := formats.ParseWDT(data)
		if err != nil {
			log.Warn("Invalid tile index, skipping map", zap.Error(err))
			continue
		}

		log.Info("Extracting map",
			zap.Int("progress", i+1),
			zap.Int("maps", len(tbls.Maps)),
			zap.Int("tiles", wdt.TileCount()))

		stat, err := e.extractMap(ctx, set, conv, tileCtx, m, wdt, dir, log)
		stats = append(stats, stat)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (e *Extractor) extractMap(ctx context.Context, set *mpq.Set, conv *mapgen.Converter, tileCtx *mapgen.Context,
	m tables.MapEntry, wdt *formats.WDT, dir string, log *zap.Logger) (MapStat, error) {
	stat := MapStat{ID: m.ID, Name: m.Name}
	for y := 0; y < formats.WDTSize; y++ {
		for x := 0; x < formats.WDTSize; x++ {
			if !wdt.HasTile(x, y) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return stat, err
			}
			stat.Tiles++

			name := ADTPath(m.Name, x, y)
			data, err := set.OpenNewest(name)
			if err != nil {
				log.Debug("Missing tile", zap.String("tile", name), zap.Error(err))
				stat.Skipped++
				continue
			}
			tile, err := formats.ParseADT(data)
			if err != nil {
				log.Warn("Invalid tile", zap.String("tile", name), zap.Error(err))
				stat.Skipped++
				continue
			}
			f, err := conv.Convert(tileCtx, name, tile)
			if err != nil {
				log.Warn("Conversion failed", zap.String("tile", name), zap.Error(err))
				stat.Skipped++
				continue
			}
			if err := f.WriteFile(filepath.Join(dir, MapFileName(m.ID, x, y))); err != nil {
				log.Warn("Failed to write tile", zap.String("tile", name), zap.Error(err))
				stat.Skipped++
				continue
			}
			stat.Written++
			stat.Bytes += uint64(f.Layout().TotalSize())
		}
	}
	stat.Human = humanize.Bytes(stat.Bytes)
	return stat, nil
}
