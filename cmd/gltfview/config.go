package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	errUnknownFormat = errors.New("unknown config format")
	errNoModel       = errors.New("no model given")
	errBadBackend    = errors.New("backend must be \"gl\" or \"wgpu\"")
)

// config is the viewer configuration, read from a TOML or YAML file and overridden by flags.
type config struct {
	// Model is the glTF or GLB to open. With BaseURL set it is a URL path relative to it.
	Model string `toml:"model" yaml:"model"`
	// BaseURL switches the loader to HTTP.
	BaseURL string `toml:"base_url" yaml:"base_url"`
	// Scene selects a scene by index; negative picks the document's default.
	Scene   int `toml:"scene" yaml:"scene"`
	Workers int `toml:"workers" yaml:"workers"`
	// Backend is "gl" for the interactive window or "wgpu" for a headless upload check.
	Backend string `toml:"backend" yaml:"backend"`
	Watch   bool   `toml:"watch" yaml:"watch"`
	// Profile logs frame statistics every second.
	Profile bool `toml:"profile" yaml:"profile"`

	Window  windowConfig  `toml:"window" yaml:"window"`
	Outline outlineConfig `toml:"outline" yaml:"outline"`
}

type windowConfig struct {
	Title  string     `toml:"title" yaml:"title"`
	Width  int        `toml:"width" yaml:"width"`
	Height int        `toml:"height" yaml:"height"`
	VSync  bool       `toml:"vsync" yaml:"vsync"`
	Clear  [4]float32 `toml:"clear" yaml:"clear"`
}

type outlineConfig struct {
	// Quiet suppresses the outline on stdout.
	Quiet bool `toml:"quiet" yaml:"quiet"`
	// HTML additionally writes the outline as headings to this file.
	HTML string `toml:"html" yaml:"html"`
}

func defaultConfig() config {
	return config{
		Scene:   -1,
		Workers: 4,
		Backend: "gl",
		Window: windowConfig{
			Title:  "gltfview",
			Width:  1280,
			Height: 720,
			VSync:  true,
			Clear:  [4]float32{0.1, 0.1, 0.12, 1},
		},
	}
}

// loadConfig reads path over the defaults. The format follows the extension.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	p, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%s: %w", path, errUnknownFormat)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// finalize expands local paths and checks the result.
func (c *config) finalize() error {
	if c.Model == "" {
		return errNoModel
	}
	switch c.Backend {
	case "", "gl":
		c.Backend = "gl"
	case "wgpu":
	default:
		return fmt.Errorf("%q: %w", c.Backend, errBadBackend)
	}

	var err error
	if c.BaseURL == "" {
		if c.Model, err = homedir.Expand(c.Model); err != nil {
			return err
		}
	}
	if c.Outline.HTML != "" {
		if c.Outline.HTML, err = homedir.Expand(c.Outline.HTML); err != nil {
			return err
		}
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}
