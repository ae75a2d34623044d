package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional dester.yaml configuration. Every field has a flag
// or built-in default, so the file may be absent entirely.
type Config struct {
	Browser      string         `yaml:"browser"`
	Headless     bool           `yaml:"headless"`
	Window       WindowConfig   `yaml:"window"`
	ImplicitWait string         `yaml:"implicit_wait"` // duration string, e.g. "10s"
	Flags        map[string]any `yaml:"flags"`
}

// WindowConfig holds window geometry.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
}

// loadConfig reads a YAML file and returns a Config. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing. An empty path
// returns defaults; a missing file at the default path is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = "dester.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// defaultConfig mirrors the driver package defaults.
func defaultConfig() Config {
	return Config{
		Browser: "chrome",
		Window:  WindowConfig{Width: 1920, Height: 1080},
	}
}

// implicitWait parses the configured implicit wait, returning zero (meaning
// "use the driver default") when unset.
func (c Config) implicitWait() (time.Duration, error) {
	if c.ImplicitWait == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.ImplicitWait)
	if err != nil {
		return 0, fmt.Errorf("parse implicit_wait: %w", err)
	}

	return d, nil
}
