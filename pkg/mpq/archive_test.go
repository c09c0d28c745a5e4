package mpq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testMPQPath returns path to a client archive if one is available.
func testMPQPath() string {
	paths := []string{
		"../../data/Data/dbc.MPQ",
		"../../data/Data/common.MPQ",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func TestOpen(t *testing.T) {
	path := testMPQPath()
	if path == "" {
		t.Skip("No MPQ file available for testing")
	}

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open MPQ: %v", err)
	}
	defer archive.Close()

	files, err := archive.ListFiles()
	if err != nil {
		t.Fatalf("failed to list files: %v", err)
	}
	t.Logf("Opened: %s (%d listed entries)", path, len(files))

	var dbcFile string
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".dbc") {
			dbcFile = f
			break
		}
	}
	if dbcFile == "" {
		t.Skip("No .dbc entries found")
	}

	if !archive.HasFile(strings.ToUpper(dbcFile)) {
		t.Logf("Case sensitivity issue: %s", dbcFile)
	}

	data, err := archive.ReadFile(dbcFile)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dbcFile, err)
	}
	if len(data) < 4 || string(data[:4]) != "WDBC" {
		t.Errorf("%s does not start with WDBC", dbcFile)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.MPQ")); err == nil {
		t.Error("expected error opening missing archive")
	}
}

func TestParseListFile(t *testing.T) {
	data := []byte("DBFilesClient\\Map.dbc\r\nDBFilesClient\\AreaTable.dbc;World\\Maps\\Azeroth\\Azeroth.wdt\n\n  \nInterface\\x.blp")

	names := parseListFile(data)
	expected := []string{
		"DBFilesClient\\Map.dbc",
		"DBFilesClient\\AreaTable.dbc",
		"World\\Maps\\Azeroth\\Azeroth.wdt",
		"Interface\\x.blp",
	}
	if len(names) != len(expected) {
		t.Fatalf("expected %d names, got %d: %v", len(expected), len(names), names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("name %d: expected %q, got %q", i, expected[i], names[i])
		}
	}
}

func TestToArchivePath(t *testing.T) {
	if got := ToArchivePath("World/Maps/Azeroth/Azeroth_32_48.adt"); got != "World\\Maps\\Azeroth\\Azeroth_32_48.adt" {
		t.Errorf("unexpected path %q", got)
	}
	if got := normalizeName("DBFilesClient/Map.DBC"); got != "dbfilesclient\\map.dbc" {
		t.Errorf("unexpected key %q", got)
	}
}
