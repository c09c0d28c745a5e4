package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up next to the client and in the working directory.
const FileName = "mapgen.yaml"

// Load loads configuration with priority: defaults < file < flags.
// The merged result is validated.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	var configPath, input string
	if f != nil {
		configPath, input = f.Config, f.Input
	}
	if configPath == "" {
		configPath = findConfigFile(input)
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config among the client
// directory, the working directory and the user config directory.
func findConfigFile(input string) string {
	var candidates []string
	if input != "" {
		candidates = append(candidates, filepath.Join(input, FileName))
	}
	candidates = append(candidates,
		FileName,
		filepath.Join(ConfigDir(), "config.yaml"),
	)

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MapGen")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MapGen")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "mapgen")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mapgen")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelled threshold does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
