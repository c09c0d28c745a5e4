package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/pkg/mpq"
)

// ErrNoArchives is returned when none of the candidate archives could be opened.
var ErrNoArchives = errors.New("no archives opened")

// Opener opens one archive file as a set layer.
type Opener func(path string) (mpq.Layer, error)

// scope selects which part of an install an archive set covers.
type scope uint8

const (
	scopeCommon scope = 1 << iota
	scopeLocale

	scopeAll = scopeCommon | scopeLocale
)

// Archive names per generation without the .MPQ suffix, lowest priority
// first. "%s" is replaced by the locale; those entries live in Data/<locale>.
var generationArchives = map[Generation][]string{
	Classic: {
		"base", "dbc", "misc", "model", "sound", "speech", "terrain", "texture", "wmo",
		"patch", "patch-2",
	},
	TBC: {
		"common", "expansion",
		"%s/locale-%s", "%s/speech-%s", "%s/expansion-locale-%s", "%s/expansion-speech-%s",
		"patch", "patch-2", "%s/patch-%s", "%s/patch-%s-2",
	},
	WotLK: {
		"common", "common-2", "expansion", "lichking",
		"%s/locale-%s", "%s/speech-%s",
		"%s/expansion-locale-%s", "%s/expansion-speech-%s",
		"%s/lichking-locale-%s", "%s/lichking-speech-%s",
		"patch", "patch-2", "patch-3", "%s/patch-%s", "%s/patch-%s-2", "%s/patch-%s-3",
	},
	Cataclysm: {
		"art", "world", "world2", "expansion1", "expansion2", "expansion3", "alternate",
		"%s/locale-%s", "%s/speech-%s",
		"%s/expansion1-locale-%s", "%s/expansion1-speech-%s",
		"%s/expansion2-locale-%s", "%s/expansion2-speech-%s",
		"%s/expansion3-locale-%s", "%s/expansion3-speech-%s",
	},
	MistsOfPandaria: {
		"world", "expansion1", "expansion2", "expansion3", "expansion4", "alternate",
		"%s/locale-%s", "%s/speech-%s",
		"%s/expansion1-speech-%s", "%s/expansion2-speech-%s",
		"%s/expansion3-speech-%s", "%s/expansion4-speech-%s",
	},
}

// archivePaths lists the existing archives of an install in load order.
// Update patches up to build follow the base archives, then the cache patches
// of the exact build.
func archivePaths(dataDir string, gen Generation, locale string, build uint32, sc scope) []string {
	var paths []string
	for _, name := range generationArchives[gen] {
		localized := strings.Contains(name, "%s")
		if localized && (locale == "" || sc&scopeLocale == 0) {
			continue
		}
		if !localized && sc&scopeCommon == 0 {
			continue
		}
		name = strings.ReplaceAll(name, "%s", locale) + ".MPQ"
		path := filepath.Join(dataDir, filepath.FromSlash(name))
		if fileExists(path) {
			paths = append(paths, path)
		}
	}

	paths = append(paths, updatePatches(dataDir, locale, build, sc)...)

	if sc&scopeCommon != 0 {
		path := filepath.Join(dataDir, "Cache", fmt.Sprintf("patch-base-%d.MPQ", build))
		if fileExists(path) {
			paths = append(paths, path)
		}
	}
	if locale != "" && sc&scopeLocale != 0 {
		path := filepath.Join(dataDir, "Cache", locale, fmt.Sprintf("patch-%s-%d.MPQ", locale, build))
		if fileExists(path) {
			paths = append(paths, path)
		}
	}
	return paths
}

// updatePattern matches wow-update-<N>.MPQ, wow-update-base-<N>.MPQ and
// wow-update-<locale>-<N>.MPQ.
var updatePattern = regexp.MustCompile(`(?i)^wow-update-(?:([a-z]{4})-)?(\d+)\.mpq$`)

type updatePatch struct {
	build  uint64
	locale bool
	path   string
}

// updatePatches finds wow-update archives with a build no newer than build,
// ordered by ascending build. At equal builds the locale patch loads first.
func updatePatches(dataDir, locale string, build uint32, sc scope) []string {
	var found []updatePatch
	scan := func(dir, wantLocale string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			m := updatePattern.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			tag := m[1]
			if strings.EqualFold(tag, "base") {
				tag = ""
			}
			if !strings.EqualFold(tag, wantLocale) {
				continue
			}
			n, err := strconv.ParseUint(m[2], 10, 32)
			if err != nil || n > uint64(build) {
				continue
			}
			found = append(found, updatePatch{build: n, locale: wantLocale != "", path: filepath.Join(dir, e.Name())})
		}
	}
	if sc&scopeCommon != 0 {
		scan(dataDir, "")
	}
	if locale != "" && sc&scopeLocale != 0 {
		scan(filepath.Join(dataDir, locale), locale)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].build != found[j].build {
			return found[i].build < found[j].build
		}
		return found[i].locale && !found[j].locale
	})
	paths := make([]string, len(found))
	for i, p := range found {
		paths[i] = p.path
	}
	return paths
}

// openSet opens paths in order into a new set. Archives that fail to open
// are logged and skipped.
func openSet(paths []string, open Opener, log *zap.Logger) (*mpq.Set, error) {
	set := mpq.NewSet()
	for _, path := range paths {
		layer, err := open(path)
		if err != nil {
			log.Warn("Failed to open archive", zap.String("path", path), zap.Error(err))
			continue
		}
		log.Debug("Loaded archive", zap.String("path", path))
		set.Add(layer)
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: tried %d", ErrNoArchives, len(paths))
	}
	return set, nil
}
