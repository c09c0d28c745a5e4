package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/pkg/mpq"
)

// tablePatterns select the client tables copied verbatim.
var tablePatterns = []string{
	`DBFilesClient\*.dbc`,
	`DBFilesClient\*.db2`,
}

// extractTables copies every client table in set to dir. When locale is set,
// the locale's component file is copied along with them.
func (e *Extractor) extractTables(set *mpq.Set, dir, locale string) (DBCSet, error) {
	result := DBCSet{Locale: locale, Dir: dir}
	log := e.log.With(zap.String("locale", locale))

	var names []string
	for _, pattern := range tablePatterns {
		found, err := set.List(pattern)
		if err != nil {
			return result, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, found...)
	}
	if locale != "" {
		names = append(names, componentFile(locale))
	}
	if len(names) == 0 {
		log.Warn("No client tables found")
		return result, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("creating %s: %w", dir, err)
	}

	log.Info("Extracting client tables", zap.Int("count", len(names)), zap.String("dir", dir))
	for _, name := range names {
		data, err := set.OpenNewest(name)
		if err != nil {
			log.Warn("Skipping table", zap.String("name", name), zap.Error(err))
			continue
		}
		base := baseName(name)
		if err := os.WriteFile(filepath.Join(dir, base), data, 0644); err != nil {
			return result, fmt.Errorf("writing %s: %w", base, err)
		}
		result.Files = append(result.Files, newFileEntry(base, data))
	}
	return result, nil
}

// baseName returns the last element of an archive path.
func baseName(name string) string {
	name = mpq.ToArchivePath(name)
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}
