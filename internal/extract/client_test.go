package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/mapgen"
	"github.com/Faultbox/mapgen/pkg/mpq"
)

func TestGenerationForBuild(t *testing.T) {
	tests := []struct {
		build uint32
		want  Generation
		magic string
	}{
		{5875, Classic, "z1.4"},
		{8606, TBC, "s1.4"},
		{12340, WotLK, "v1.4"},
		{15595, Cataclysm, "c1.4"},
		{18414, MistsOfPandaria, "p1.4"},
	}
	for _, tt := range tests {
		got, err := GenerationForBuild(tt.build)
		if err != nil {
			t.Fatalf("build %d: %v", tt.build, err)
		}
		if got != tt.want || got.VersionMagic() != tt.magic {
			t.Errorf("build %d: got %s %s, want %s %s", tt.build, got, got.VersionMagic(), tt.want, tt.magic)
		}
	}

	if _, err := GenerationForBuild(1234); !errors.Is(err, ErrUnknownBuild) {
		t.Errorf("expected ErrUnknownBuild, got %v", err)
	}
}

func TestGenerationLiquidFlags(t *testing.T) {
	if TBC.LiquidFlags() != mapgen.LegacyLiquidFlags {
		t.Error("TBC should use the legacy flag layout")
	}
	if WotLK.LiquidFlags() != mapgen.ModernLiquidFlags {
		t.Error("WotLK should use the modern flag layout")
	}
	if Classic.Localized() || !TBC.Localized() {
		t.Error("only Classic ships without locale archives")
	}
}

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetectBuild(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "common.MPQ", "expansion.MPQ")
	build, err := DetectBuild(dir)
	if err != nil || build != 8606 {
		t.Errorf("expected 8606, got %d (%v)", build, err)
	}

	touch(t, dir, "lichking.MPQ")
	if build, _ := DetectBuild(dir); build != 12340 {
		t.Errorf("newest marker should win, got %d", build)
	}

	if _, err := DetectBuild(t.TempDir()); !errors.Is(err, ErrUnknownBuild) {
		t.Errorf("expected ErrUnknownBuild, got %v", err)
	}
}

func TestDetectLocales(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ruRU/locale-ruRU.MPQ", "enUS/locale-enUS.MPQ", "frFR/speech-frFR.MPQ")

	got := DetectLocales(dir, nil)
	if len(got) != 2 || got[0] != "enUS" || got[1] != "ruRU" {
		t.Errorf("unexpected locales %v", got)
	}
	got = DetectLocales(dir, []string{"RURU"})
	if len(got) != 1 || got[0] != "ruRU" {
		t.Errorf("filter should be case-insensitive, got %v", got)
	}
}

func TestParseComponentBuild(t *testing.T) {
	for _, text := range []string{
		`<component name="wow-enUS" version="12340"/>`,
		`<?xml version="1.0"?><componentinfo><component name="wow-enUS" version="12340"/></componentinfo>`,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\r\n<componentinfo>\r\n  <component name=\"wow-deDE\" version=\"12340\" />\r\n</componentinfo>",
	} {
		build, err := ParseComponentBuild(text)
		if err != nil || build != 12340 {
			t.Errorf("%q: expected 12340, got %d (%v)", text, build, err)
		}
	}

	for _, bad := range []string{
		`<component name="wow-enUS"/>`,
		`<?xml version="1.0"?><componentinfo/>`,
		`<component version="12340`,
		`<component version="">`,
		`<component version="abc">`,
		`<component version="0">`,
		`<component name="wow-enUS"/><other version="12340"/>`,
	} {
		if _, err := ParseComponentBuild(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestArchivePaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"common.MPQ", "lichking.MPQ", "patch.MPQ", "patch-3.MPQ",
		"enUS/locale-enUS.MPQ", "enUS/patch-enUS.MPQ",
		"wow-update-12000.MPQ", "wow-update-12400.MPQ",
		"enUS/wow-update-enUS-12000.MPQ", "enUS/wow-update-enUS-11000.MPQ",
		"Cache/patch-base-12340.MPQ", "Cache/enUS/patch-enUS-12340.MPQ",
		"Cache/patch-base-12000.MPQ",
	)

	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			r, _ := filepath.Rel(dir, p)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}
	check := func(name string, got, want []string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d]: got %s, want %s", name, i, got[i], want[i])
			}
		}
	}

	check("all", rel(archivePaths(dir, WotLK, "enUS", 12340, scopeAll)), []string{
		"common.MPQ",
		"lichking.MPQ",
		"enUS/locale-enUS.MPQ",
		"patch.MPQ",
		"patch-3.MPQ",
		"enUS/patch-enUS.MPQ",
		"enUS/wow-update-enUS-11000.MPQ",
		"enUS/wow-update-enUS-12000.MPQ",
		"wow-update-12000.MPQ",
		"Cache/patch-base-12340.MPQ",
		"Cache/enUS/patch-enUS-12340.MPQ",
	})
	check("locale", rel(archivePaths(dir, WotLK, "enUS", 12340, scopeLocale)), []string{
		"enUS/locale-enUS.MPQ",
		"enUS/patch-enUS.MPQ",
		"enUS/wow-update-enUS-11000.MPQ",
		"enUS/wow-update-enUS-12000.MPQ",
		"Cache/enUS/patch-enUS-12340.MPQ",
	})
	check("common", rel(archivePaths(dir, WotLK, "", 12340, scopeAll)), []string{
		"common.MPQ",
		"lichking.MPQ",
		"patch.MPQ",
		"patch-3.MPQ",
		"wow-update-12000.MPQ",
		"Cache/patch-base-12340.MPQ",
	})
}

func TestOpenSet(t *testing.T) {
	layers := map[string]mpq.Layer{
		"a": mpq.NewMemoryLayer("a", map[string][]byte{"x.txt": []byte("a")}),
		"c": mpq.NewMemoryLayer("c", map[string][]byte{"x.txt": []byte("c")}),
	}
	open := func(path string) (mpq.Layer, error) {
		if l, ok := layers[path]; ok {
			return l, nil
		}
		return nil, mpq.ErrNotFound
	}

	set, err := openSet([]string{"a", "b", "c"}, open, zap.NewNop())
	if err != nil {
		t.Fatalf("openSet failed: %v", err)
	}
	defer set.Close()
	if set.Len() != 2 {
		t.Errorf("expected 2 layers, got %d", set.Len())
	}
	if data, _ := set.OpenNewest("x.txt"); string(data) != "c" {
		t.Errorf("later archives should win, got %q", data)
	}

	if _, err := openSet([]string{"b"}, open, zap.NewNop()); !errors.Is(err, ErrNoArchives) {
		t.Errorf("expected ErrNoArchives, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	if got := WDTPath("Azeroth"); got != `World\Maps\Azeroth\Azeroth.wdt` {
		t.Errorf("unexpected WDT path %s", got)
	}
	if got := ADTPath("Azeroth", 32, 48); got != `World\Maps\Azeroth\Azeroth_32_48.adt` {
		t.Errorf("unexpected ADT path %s", got)
	}
	if got := MapFileName(530, 32, 48); got != "05304832.map" {
		t.Errorf("unexpected map file name %s", got)
	}
	if got := baseName(`DBFilesClient\Map.dbc`); got != "Map.dbc" {
		t.Errorf("unexpected base name %s", got)
	}
}
