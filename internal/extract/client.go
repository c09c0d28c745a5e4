// Package extract drives a full extraction run over a client install.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/mapgen/internal/mapgen"
)

// Extraction errors. All of them abort the run.
var (
	ErrNoClientData  = errors.New("client Data directory not found")
	ErrUnknownBuild  = errors.New("unsupported client build")
	ErrNoLocale      = errors.New("no client locale found")
	ErrBuildMismatch = errors.New("client build mismatch")
)

// Generation is a client expansion level.
type Generation int

// Supported client generations.
const (
	Classic Generation = iota
	TBC
	WotLK
	Cataclysm
	MistsOfPandaria
)

// String returns the generation name.
func (g Generation) String() string {
	switch g {
	case Classic:
		return "classic"
	case TBC:
		return "tbc"
	case WotLK:
		return "wotlk"
	case Cataclysm:
		return "cataclysm"
	case MistsOfPandaria:
		return "mop"
	default:
		return fmt.Sprintf("generation(%d)", int(g))
	}
}

// Build returns the client build the generation is extracted from.
func (g Generation) Build() uint32 {
	switch g {
	case Classic:
		return 5875
	case TBC:
		return 8606
	case WotLK:
		return 12340
	case Cataclysm:
		return 15595
	case MistsOfPandaria:
		return 18414
	default:
		return 0
	}
}

// VersionMagic returns the map file version tag the server expects.
func (g Generation) VersionMagic() string {
	switch g {
	case Classic:
		return "z1.4"
	case TBC:
		return "s1.4"
	case WotLK:
		return "v1.4"
	case Cataclysm:
		return "c1.4"
	default:
		return "p1.4"
	}
}

// LiquidFlags returns the liquid flag layout of the generation's server.
func (g Generation) LiquidFlags() mapgen.LiquidFlags {
	if g <= TBC {
		return mapgen.LegacyLiquidFlags
	}
	return mapgen.ModernLiquidFlags
}

// Localized reports whether the generation ships locale archive sets.
func (g Generation) Localized() bool {
	return g != Classic
}

// GenerationForBuild maps a client build to its generation.
func GenerationForBuild(build uint32) (Generation, error) {
	for g := Classic; g <= MistsOfPandaria; g++ {
		if g.Build() == build {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownBuild, build)
}

// buildMarkers identify a generation by an archive only its client ships,
// newest first.
var buildMarkers = []struct {
	archive    string
	generation Generation
}{
	{"expansion4.MPQ", MistsOfPandaria},
	{"expansion3.MPQ", Cataclysm},
	{"lichking.MPQ", WotLK},
	{"expansion.MPQ", TBC},
	{"base.MPQ", Classic},
	{"dbc.MPQ", Classic},
}

// DetectBuild guesses the client build from the archives under dataDir.
func DetectBuild(dataDir string) (uint32, error) {
	for _, m := range buildMarkers {
		if fileExists(filepath.Join(dataDir, m.archive)) {
			return m.generation.Build(), nil
		}
	}
	return 0, fmt.Errorf("%w: no known archive in %s", ErrUnknownBuild, dataDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
