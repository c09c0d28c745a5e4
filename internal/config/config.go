// Package config handles extractor configuration loading and management.
package config

// Config holds all extractor settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Extract ExtractConfig `yaml:"extract"`
	Client  ClientConfig  `yaml:"client"`
	Map     MapConfig     `yaml:"map"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	Input  string `yaml:"input"`  // Client directory containing Data/
	Output string `yaml:"output"` // Destination for maps/ and dbc/
}

// ExtractConfig selects what to extract.
type ExtractConfig struct {
	Maps bool `yaml:"maps"`
	DBC  bool `yaml:"dbc"`
}

// ClientConfig describes the client install.
type ClientConfig struct {
	Build   uint32   `yaml:"build"`   // 0 detects the build from the installed archives
	Locales []string `yaml:"locales"` // Empty means every detected locale
}

// MapConfig holds the map encoding thresholds.
type MapConfig struct {
	AllowHeightLimit bool    `yaml:"allow_height_limit"`
	MinHeight        float32 `yaml:"min_height"`
	AllowFloatToInt  bool    `yaml:"allow_float_to_int"`
	FlatHeightDelta  float32 `yaml:"flat_height_delta"`
	FlatLiquidDelta  float32 `yaml:"flat_liquid_delta"`
	Int8Limit        float32 `yaml:"int8_limit"`
	Int16Limit       float32 `yaml:"int16_limit"`
	VersionMagic     string  `yaml:"version_magic"` // Overrides the per-generation tag
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Input:  ".",
			Output: ".",
		},
		Extract: ExtractConfig{
			Maps: true,
			DBC:  true,
		},
		Map: MapConfig{
			AllowHeightLimit: true,
			MinHeight:        -500,
			AllowFloatToInt:  false,
			FlatHeightDelta:  0.005,
			FlatLiquidDelta:  0.001,
			Int8Limit:        2,
			Int16Limit:       2048,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
