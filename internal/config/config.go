// Package config loads kvtree settings from the embedded defaults and an
// optional YAML or TOML file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvtree/internal/formatter"
	"github.com/oakwood-commons/kvtree/internal/limiter"
	"github.com/oakwood-commons/kvtree/internal/render"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// AppName names the XDG config directory.
const AppName = "kvtree"

// Auto-decode modes.
const (
	AutoDecodeDisabled = "disabled"
	AutoDecodeEager    = "eager"
)

// Config is the merged kvtree configuration.
type Config struct {
	Output     string         `json:"output" yaml:"output" toml:"output"`
	NoColor    bool           `json:"no_color" yaml:"no_color" toml:"no_color"`
	Width      int            `json:"width" yaml:"width" toml:"width"`
	ArrayStyle string         `json:"array_style" yaml:"array_style" toml:"array_style"`
	ShowKeys   bool           `json:"show_keys" yaml:"show_keys" toml:"show_keys"`
	AutoDecode string         `json:"auto_decode" yaml:"auto_decode" toml:"auto_decode"`
	Render     render.Options `json:"render" yaml:"render" toml:"render"`
	Limit      limiter.Config `json:"limit" yaml:"limit" toml:"limit"`
	Theme      ThemeConfig    `json:"theme" yaml:"theme" toml:"theme"`
}

// ThemeConfig holds terminal colors as ANSI codes or hex strings.
type ThemeConfig struct {
	HeaderFG  string `json:"header_fg" yaml:"header_fg" toml:"header_fg"`
	HeaderBG  string `json:"header_bg" yaml:"header_bg" toml:"header_bg"`
	Key       string `json:"key" yaml:"key" toml:"key"`
	Value     string `json:"value" yaml:"value" toml:"value"`
	Separator string `json:"separator" yaml:"separator" toml:"separator"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Marker    string `json:"marker" yaml:"marker" toml:"marker"`
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
	defaultErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (Config, error) {
	defaultOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			defaultErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &defaultCfg); err != nil {
			defaultErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	cfg := defaultCfg
	cfg.Render.PriorityKeys = append([]string(nil), defaultCfg.Render.PriorityKeys...)
	return cfg, defaultErr
}

// Load returns the defaults merged with the file at path. Fields absent from
// the file keep their default. Files ending in .toml are read as TOML,
// everything else as YAML. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ResolvePath returns explicit if set, otherwise
// $XDG_CONFIG_HOME/kvtree/config.{yaml,yml,toml} or
// ~/.config/kvtree/config.{yaml,yml,toml} when present.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dir, AppName, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := formatter.ParseFormat(c.Output); err != nil {
		return err
	}
	if err := formatter.ValidateArrayStyle(c.ArrayStyle); err != nil {
		return err
	}
	switch c.AutoDecode {
	case "", AutoDecodeDisabled, AutoDecodeEager:
	default:
		return fmt.Errorf("invalid auto-decode %q: valid values are eager, disabled", c.AutoDecode)
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return c.Limit.Validate()
}

// FormatterOptions returns the text output options.
func (c Config) FormatterOptions() formatter.Options {
	return formatter.Options{
		NoColor:    c.NoColor,
		Width:      c.Width,
		ShowKeys:   c.ShowKeys,
		ArrayStyle: c.ArrayStyle,
	}
}

// TableColors converts the theme to formatter colors. Empty entries keep
// the formatter defaults.
func (t ThemeConfig) TableColors() formatter.TableColors {
	pick := func(s string) color.Color {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return lipgloss.Color(strings.TrimSpace(s))
	}
	return formatter.TableColors{
		HeaderFG:       pick(t.HeaderFG),
		HeaderBG:       pick(t.HeaderBG),
		KeyColor:       pick(t.Key),
		ValueColor:     pick(t.Value),
		SeparatorColor: pick(t.Separator),
		TitleColor:     pick(t.Title),
		MarkerColor:    pick(t.Marker),
	}
}

// Marshal encodes c as yaml, json or toml.
func (c Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		return json.MarshalIndent(c, "", "  ")
	case "toml":
		return toml.Marshal(c)
	default:
		return nil, fmt.Errorf("invalid config output %q: valid values are yaml, json, toml", format)
	}
}
