package extract

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Locales are the client locales in detection order.
var Locales = []string{
	"enGB", "enUS", "deDE", "esES", "frFR", "koKR",
	"zhCN", "zhTW", "enCN", "enTW", "esMX", "ruRU",
}

// DetectLocales returns the locales with a locale archive under dataDir.
// When only is non-empty, detection is restricted to those locales.
func DetectLocales(dataDir string, only []string) []string {
	var found []string
	for _, loc := range Locales {
		if len(only) > 0 && !contains(only, loc) {
			continue
		}
		if fileExists(localeArchive(dataDir, loc)) {
			found = append(found, loc)
		}
	}
	return found
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func localeArchive(dataDir, locale string) string {
	return filepath.Join(dataDir, locale, "locale-"+locale+".MPQ")
}

// componentFile is the build info entry shipped in every locale archive set.
func componentFile(locale string) string {
	return "component.wow-" + locale + ".txt"
}

// ParseComponentBuild extracts the build number from the version="NNNN"
// attribute of a component file's <component> element.
func ParseComponentBuild(text string) (uint32, error) {
	start := strings.Index(text, "<component ")
	if start < 0 {
		return 0, fmt.Errorf("no component element")
	}
	elem := text[start:]
	if end := strings.IndexByte(elem, '>'); end >= 0 {
		elem = elem[:end]
	}

	const key = ` version="`
	at := strings.Index(elem, key)
	if at < 0 {
		return 0, fmt.Errorf("no version attribute")
	}
	value := elem[at+len(key):]
	end := strings.IndexByte(value, '"')
	if end < 0 {
		return 0, fmt.Errorf("unterminated version attribute")
	}
	build, err := strconv.ParseUint(value[:end], 10, 32)
	if err != nil || build == 0 {
		return 0, fmt.Errorf("invalid build %q", value[:end])
	}
	return uint32(build), nil
}

// checkLocaleBuild verifies that the locale archive set matches build.
func checkLocaleBuild(src interface {
	OpenNewest(string) ([]byte, error)
}, locale string, build uint32) error {
	name := componentFile(locale)
	data, err := src.OpenNewest(name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	got, err := ParseComponentBuild(string(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if got != build {
		return fmt.Errorf("%w: %s reports build %d, expected %d", ErrBuildMismatch, name, got, build)
	}
	return nil
}
