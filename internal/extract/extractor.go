package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/config"
	"github.com/Faultbox/mapgen/internal/mapfile"
	"github.com/Faultbox/mapgen/internal/mapgen"
	"github.com/Faultbox/mapgen/pkg/mpq"
)

// Extractor runs one extraction over a client install.
type Extractor struct {
	cfg *config.Config
	log *zap.Logger

	// Open opens archive files. It defaults to mpq.OpenLayer.
	Open Opener
}

// New creates an extractor for cfg.
func New(cfg *config.Config, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{cfg: cfg, log: log, Open: mpq.OpenLayer}
}

// DataDir returns the client archive directory.
func (e *Extractor) DataDir() string {
	return filepath.Join(e.cfg.Paths.Input, "Data")
}

// Run extracts the requested tables and maps and writes the run report.
func (e *Extractor) Run(ctx context.Context) (*Report, error) {
	dataDir := e.DataDir()
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoClientData, dataDir)
	}

	build := e.cfg.Client.Build
	if build == 0 {
		detected, err := DetectBuild(dataDir)
		if err != nil {
			return nil, err
		}
		build = detected
	}
	gen, err := GenerationForBuild(build)
	if err != nil {
		return nil, err
	}
	opts, err := e.mapOptions(gen, build)
	if err != nil {
		return nil, err
	}

	e.log.Info("Starting extraction",
		zap.String("input", e.cfg.Paths.Input),
		zap.String("output", e.cfg.Paths.Output),
		zap.String("generation", gen.String()),
		zap.Uint32("build", build),
		zap.Bool("maps", e.cfg.Extract.Maps),
		zap.Bool("dbc", e.cfg.Extract.DBC))

	report := &Report{Generation: gen.String(), Build: build, Magic: string(opts.VersionMagic[:])}
	if gen.Localized() {
		err = e.runLocalized(ctx, report, dataDir, gen, build, opts)
	} else {
		err = e.runSingle(ctx, report, dataDir, gen, build, opts)
	}
	if err != nil {
		return report, err
	}

	report.Finished = time.Now().UTC()
	if err := report.WriteFile(filepath.Join(e.cfg.Paths.Output, ReportName)); err != nil {
		return report, fmt.Errorf("writing report: %w", err)
	}
	e.log.Info("Extraction complete",
		zap.Int("tables", report.DBCCount()),
		zap.Int("tiles", report.TileCount()))
	return report, nil
}

// runSingle handles clients without locale archive sets.
func (e *Extractor) runSingle(ctx context.Context, report *Report, dataDir string, gen Generation, build uint32, opts mapgen.Options) error {
	set, err := openSet(archivePaths(dataDir, gen, "", build, scopeAll), e.Open, e.log)
	if err != nil {
		return err
	}
	defer set.Close()

	if e.cfg.Extract.DBC {
		tables, err := e.extractTables(set, filepath.Join(e.cfg.Paths.Output, "dbc"), "")
		if err != nil {
			return err
		}
		report.DBC = append(report.DBC, tables)
	}
	if e.cfg.Extract.Maps {
		report.Maps, err = e.extractMaps(ctx, set, opts)
		if err != nil {
			return err
		}
	}
	return nil
}

// runLocalized extracts tables per locale and maps once, using the first
// locale found.
func (e *Extractor) runLocalized(ctx context.Context, report *Report, dataDir string, gen Generation, build uint32, opts mapgen.Options) error {
	locales := DetectLocales(dataDir, e.cfg.Client.Locales)
	if len(locales) == 0 {
		return fmt.Errorf("%w in %s", ErrNoLocale, dataDir)
	}

	for i, locale := range locales {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.log.Info("Detected locale", zap.String("locale", locale))

		set, err := openSet(archivePaths(dataDir, gen, locale, build, scopeLocale), e.Open, e.log)
		if err != nil {
			return fmt.Errorf("locale %s: %w", locale, err)
		}
		if i == 0 {
			if err := checkLocaleBuild(set, locale, build); err != nil {
				set.Close()
				return err
			}
		}
		report.Locales = append(report.Locales, locale)

		if e.cfg.Extract.DBC {
			dir := filepath.Join(e.cfg.Paths.Output, "dbc")
			if i > 0 {
				dir = filepath.Join(dir, locale)
			}
			tables, err := e.extractTables(set, dir, locale)
			if err != nil {
				set.Close()
				return err
			}
			report.DBC = append(report.DBC, tables)
		}
		set.Close()

		if !e.cfg.Extract.DBC {
			break
		}
	}

	if !e.cfg.Extract.Maps {
		return nil
	}
	set, err := openSet(archivePaths(dataDir, gen, locales[0], build, scopeAll), e.Open, e.log)
	if err != nil {
		return err
	}
	defer set.Close()
	report.Maps, err = e.extractMaps(ctx, set, opts)
	return err
}

// mapOptions builds converter options from the config and the client generation.
func (e *Extractor) mapOptions(gen Generation, build uint32) (mapgen.Options, error) {
	m := e.cfg.Map
	opts := mapgen.Options{
		Build:            build,
		AllowHeightLimit: m.AllowHeightLimit,
		MinHeight:        m.MinHeight,
		AllowFloatToInt:  m.AllowFloatToInt,
		FlatHeightDelta:  m.FlatHeightDelta,
		FlatLiquidDelta:  m.FlatLiquidDelta,
		Int8Limit:        m.Int8Limit,
		Int16Limit:       m.Int16Limit,
		Liquid:           gen.LiquidFlags(),
	}

	tag := gen.VersionMagic()
	if m.VersionMagic != "" {
		tag = m.VersionMagic
	}
	magic, err := mapfile.FourCC(tag)
	if err != nil {
		return opts, fmt.Errorf("version magic: %w", err)
	}
	opts.VersionMagic = magic
	return opts, nil
}
