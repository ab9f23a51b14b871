package autoqasm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name FindConfig looks for.
const ConfigFile = "autoqasm.toml"

// Config is the content of an autoqasm.toml file.
type Config struct {
	Program ProgramSection `toml:"program"`
	Device  DeviceSection  `toml:"device"`
	Log     LogSection     `toml:"log"`
	Output  OutputSection  `toml:"output"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

type ProgramSection struct {
	NumQubits int `toml:"num_qubits"`
}

// DeviceSection names the target device and the pragmas it accepts.
type DeviceSection struct {
	Name    string   `toml:"name"`
	Pragmas []string `toml:"pragmas"`
}

// LogSection configures commonlog. An empty File logs to stderr.
type LogSection struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// OutputSection configures batch output. Format is "qasm" or "cbor".
type OutputSection struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

// DefaultConfig is used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{Output: OutputSection{Format: "qasm"}}
}

// LoadConfig parses the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Path = path

	if cfg.Program.NumQubits < 0 {
		return nil, fmt.Errorf("%s: num_qubits must not be negative", path)
	}
	switch cfg.Output.Format {
	case "qasm", "cbor":
	default:
		return nil, fmt.Errorf("%s: unknown output format %q", path, cfg.Output.Format)
	}
	return cfg, nil
}

// FindConfig walks up from startDir looking for autoqasm.toml and loads the
// first one found. It returns nil when there is none.
func FindConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// UserConfig returns the build configuration described by the file.
func (c *Config) UserConfig() UserConfig {
	return UserConfig{
		NumQubits: c.Program.NumQubits,
		Device:    DeviceConfig{Name: c.Device.Name, Pragmas: c.Device.Pragmas},
	}
}
