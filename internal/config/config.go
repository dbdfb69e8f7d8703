// Package config holds the settings of the tonelli command. Values come from
// built-in defaults, then an optional TOML or YAML file, then command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"tonelli/internal/log"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	DefaultTableLimit uint64 = 1 << 12
	// MaxTableLimit bounds the table command; every row costs a full
	// square root computation and a line of output.
	MaxTableLimit uint64 = 1 << 20
)

type Config struct {
	Format      Format `toml:"format" yaml:"format"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogJSON     bool   `toml:"log_json" yaml:"log_json"`
	Strict      bool   `toml:"strict" yaml:"strict"`
	TableLimit  uint64 `toml:"table_limit" yaml:"table_limit"`
	MetricsFile string `toml:"metrics_file" yaml:"metrics_file"`
}

func Default() *Config {
	return &Config{
		Format:     FormatText,
		LogLevel:   "info",
		TableLimit: DefaultTableLimit,
	}
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults. The decoder is chosen by extension: .toml, .yaml or
// .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, filepath.Ext(path))
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if _, err := ParseFormat(string(c.Format)); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	if c.TableLimit == 0 || c.TableLimit > MaxTableLimit {
		result = multierror.Append(result, fmt.Errorf("table_limit must be in [1, %d], got %d", MaxTableLimit, c.TableLimit))
	}
	if c.MetricsFile != "" {
		if fi, err := os.Stat(c.MetricsFile); err == nil && fi.IsDir() {
			result = multierror.Append(result, fmt.Errorf("metrics_file %s is a directory", c.MetricsFile))
		}
	}
	return result.ErrorOrNil()
}

// Level is the parsed LogLevel; call Validate first.
func (c *Config) Level() int {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// --- parsing helpers ---

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q", s)
	}
}

// ParseUint parses a decimal or 0x-prefixed hexadecimal operand that fits in
// 64 bits. name is used in the error message.
func ParseUint(s, name string) (uint64, error) {
	orig := s
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%s does not fit in 64 bits: %q", name, orig)
		}
		return 0, fmt.Errorf("invalid integer for %s: %q", name, orig)
	}
	return v, nil
}
