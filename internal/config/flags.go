package config

import (
	"github.com/jessevdk/go-flags"
)

// Extract selector values accepted by --extract.
const (
	ExtractMaps = "1"
	ExtractDBC  = "2"
	ExtractAll  = "3"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config     string   `short:"c" long:"config" description:"Path to config file"`
	Input      string   `short:"i" long:"input" description:"Client directory containing Data/"`
	Output     string   `short:"o" long:"output" description:"Output directory"`
	Flat       *int     `short:"f" long:"flat" description:"Height packing: 0 stores floats, any other value packs to integers"`
	Extract    string   `short:"e" long:"extract" choice:"1" choice:"2" choice:"3" description:"1 maps, 2 DBC files, 3 both"`
	Build      uint32   `short:"b" long:"build" description:"Client build (detected when omitted)"`
	Locales    []string `short:"l" long:"locale" description:"Locale to extract (repeatable)"`
	Debug      bool     `long:"debug" description:"Enable debug logging"`
	LogFile    string   `long:"log-file" description:"Also log to this file"`
	SaveConfig string   `long:"save-config" description:"Write the effective config to this path"`
}

// ParseFlags parses command-line arguments.
func ParseFlags(args []string) (*Flags, error) {
	var f Flags
	parser := flags.NewParser(&f, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &f, nil
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Input != "" {
		cfg.Paths.Input = f.Input
	}
	if f.Output != "" {
		cfg.Paths.Output = f.Output
	}
	if f.Flat != nil {
		cfg.Map.AllowFloatToInt = *f.Flat != 0
	}
	switch f.Extract {
	case ExtractMaps:
		cfg.Extract.Maps, cfg.Extract.DBC = true, false
	case ExtractDBC:
		cfg.Extract.Maps, cfg.Extract.DBC = false, true
	case ExtractAll:
		cfg.Extract.Maps, cfg.Extract.DBC = true, true
	}
	if f.Build != 0 {
		cfg.Client.Build = f.Build
	}
	if len(f.Locales) > 0 {
		cfg.Client.Locales = f.Locales
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
