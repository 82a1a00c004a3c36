// Package config loads mchtimings settings from a YAML or TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mscrnt/mchtimings/pkg/chipset/i915"
	"github.com/mscrnt/mchtimings/pkg/source"
)

// EnvVar names the config file when no path is given on the command line
const EnvVar = "MCHTIMINGS_CONFIG"

// Config holds all settings
type Config struct {
	MCHBAR uint32 `yaml:"mchbar" toml:"mchbar"`
	Tool   Tool   `yaml:"tool" toml:"tool"`
	Timing Timing `yaml:"timing" toml:"timing"`
}

// Tool configures the RWEverything invocation used for live reads
type Tool struct {
	Path     string        `yaml:"path" toml:"path"`
	Args     string        `yaml:"args" toml:"args"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
	Retries  int           `yaml:"retries" toml:"retries"`
	RetryMin time.Duration `yaml:"retry_min" toml:"retry_min"`
	RetryMax time.Duration `yaml:"retry_max" toml:"retry_max"`
}

// Timing holds the speed grade constants that no register carries
type Timing struct {
	ClockMHz int   `yaml:"clock_mhz" toml:"clock_mhz"`
	WTR      int64 `yaml:"wtr" toml:"wtr"`
	WR       int64 `yaml:"wr" toml:"wr"`
}

// Default returns the settings for an Intel 915 board with DDR2-400 memory
func Default() *Config {
	return &Config{
		MCHBAR: i915.MCHBAR,
		Tool: Tool{
			Path:     source.DefaultToolPath,
			Args:     source.DefaultToolArgs,
			Timeout:  10 * time.Second,
			Retries:  3,
			RetryMin: 100 * time.Millisecond,
			RetryMax: time.Second,
		},
		Timing: Timing{
			ClockMHz: i915.DefaultClockMHz,
			WTR:      i915.DefaultWTR,
			WR:       i915.DefaultWR,
		},
	}
}

// Validate checks the settings for values that cannot work
func (c *Config) Validate() error {
	if c.MCHBAR == 0 {
		return fmt.Errorf("mchbar cannot be zero")
	}
	if c.MCHBAR&0x3FFF != 0 {
		return fmt.Errorf("mchbar 0x%08X is not 16 KiB aligned", c.MCHBAR)
	}
	if c.Tool.Path == "" {
		return fmt.Errorf("tool.path cannot be empty")
	}
	if !strings.Contains(c.Tool.Args, source.AddressPlaceholder) {
		return fmt.Errorf("tool.args must contain %s", source.AddressPlaceholder)
	}
	if c.Tool.Timeout < 0 {
		return fmt.Errorf("tool.timeout cannot be negative")
	}
	if c.Tool.Retries < 1 {
		return fmt.Errorf("tool.retries must be at least 1, got %d", c.Tool.Retries)
	}
	if c.Tool.RetryMin < 0 || c.Tool.RetryMax < c.Tool.RetryMin {
		return fmt.Errorf("invalid retry delays %s..%s", c.Tool.RetryMin, c.Tool.RetryMax)
	}
	if c.Timing.ClockMHz <= 0 {
		return fmt.Errorf("timing.clock_mhz must be positive")
	}
	if c.Timing.WTR <= 0 || c.Timing.WR <= 0 {
		return fmt.Errorf("timing.wtr and timing.wr must be positive")
	}
	return nil
}

// Load reads path over the defaults. The format follows the file extension:
// .toml for TOML, anything else is parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse %s: unknown key %s", path, undecoded[0])
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the file named by path, or by EnvVar when path is empty.
// With neither set it returns the defaults.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
