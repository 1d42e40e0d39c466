// Package config loads run parameters for the creature-creator demo (arena
// capacity, desired radius, RNG seed, window and logging settings) from a
// YAML file instead of flag soup. The engine's tuning constants are not
// configurable here.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the knobs an operator would plausibly want to tune
// between runs. The engine's fixed tuning constants are not here; they
// stay in package aprs.
type Config struct {
	Capacity      uint32  `yaml:"capacity"`
	DesiredRadius float32 `yaml:"desired_radius"`
	Seed          int64   `yaml:"seed"`
	WindowWidth   int     `yaml:"window_width"`
	WindowHeight  int     `yaml:"window_height"`
	WindowTitle   string  `yaml:"window_title"`
	DebugLogging  bool    `yaml:"debug_logging"`
	CSVDumpPath   string  `yaml:"csv_dump_path"`
}

// Default returns the configuration the demo starts from when no file is
// supplied.
func Default() Config {
	return Config{
		Capacity:      100_000,
		DesiredRadius: 0.5,
		Seed:          1,
		WindowWidth:   1280,
		WindowHeight:  720,
		WindowTitle:   "sporeforge",
	}
}

// Load reads and parses a YAML config file, starting from Default() so a
// partial file only overrides what it specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
