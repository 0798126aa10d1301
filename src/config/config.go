package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iafilius/TraceViewer/src/logging"
)

// Config holds runtime configuration for the viewer and the report CLI.
type Config struct {
	FilePath       string
	LogFormat      string // "text" or "json"
	LogLevel       string
	PlotWidthInch  float64
	PlotHeightInch float64
	ScreenshotsDir string
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		LogFormat:      "text",
		LogLevel:       "info",
		PlotWidthInch:  8,
		PlotHeightInch: 6,
	}
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`
	Plot      struct {
		WidthIn  float64 `yaml:"width_in"`
		HeightIn float64 `yaml:"height_in"`
	} `yaml:"plot"`
}

// LoadFromFile reads a YAML config file and merges its non-empty values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.LogFormat != "" {
		c.LogFormat = yc.LogFormat
	}
	if yc.LogLevel != "" {
		c.LogLevel = yc.LogLevel
	}
	if yc.Plot.WidthIn != 0 {
		c.PlotWidthInch = yc.Plot.WidthIn
	}
	if yc.Plot.HeightIn != 0 {
		c.PlotHeightInch = yc.Plot.HeightIn
	}
	return c.Validate()
}

// Validate checks the logging and plot settings.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.PlotWidthInch <= 0 || c.PlotHeightInch <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g in", c.PlotWidthInch, c.PlotHeightInch)
	}
	return nil
}

// RequireFile checks that FilePath is set and readable.
func (c *Config) RequireFile() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}
