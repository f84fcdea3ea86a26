package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives a tabbadge run. Flags override file values.
type Config struct {
	URL       string      `yaml:"url"`
	RemoteURL string      `yaml:"remote_url"`
	Headful   bool        `yaml:"headful"`
	Badge     BadgeConfig `yaml:"badge"`
}

// BadgeConfig is the badge value and styling to apply.
type BadgeConfig struct {
	Count           int    `yaml:"count"`
	Indicator       bool   `yaml:"indicator"`
	BackgroundColor string `yaml:"background_color"`
	Color           string `yaml:"color"`
	IndicatorGlyph  string `yaml:"indicator_glyph"`
}

func defaultConfig() Config {
	return Config{}
}

func loadConfigFile(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tabbadge: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tabbadge: parse config: %w", err)
	}
	return cfg, nil
}
