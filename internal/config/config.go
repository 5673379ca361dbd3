// Package config loads the optional project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/msl-script/internal/pager"
)

// FileName is the project file looked up in the working directory.
const FileName = "msl-script.yaml"

// Config holds project settings. Zero values fall back to defaults.
type Config struct {
	DB        string `yaml:"db"`
	OutputDir string `yaml:"output_dir"`
	Workers   int    `yaml:"workers"`
	Textbox   struct {
		Width int `yaml:"width"`
		Lines int `yaml:"lines"`
	} `yaml:"textbox"`
}

// Load reads path. An empty path reads FileName if present; a missing
// default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.DB != "" && !filepath.IsAbs(c.DB) {
		c.DB = filepath.Join(filepath.Dir(path), c.DB)
	}
	return &c, nil
}

// Pager returns the textbox options, filling unset sizes with defaults.
func (c *Config) Pager() pager.Options {
	opts := pager.DefaultOptions()
	if c.Textbox.Width > 0 {
		opts.MaxWidth = c.Textbox.Width
	}
	if c.Textbox.Lines > 0 {
		opts.MaxLines = c.Textbox.Lines
	}
	return opts
}
