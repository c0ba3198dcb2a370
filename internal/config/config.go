package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
	"gopkg.in/yaml.v3"

	"github.com/hostport/hostport-go"
)

// Config holds the hostport CLI configuration.
type Config struct {
	Port        int           `yaml:"port"`
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	Header      string        `yaml:"header"`
	Terminator  string        `yaml:"terminator"`
	Timeout     time.Duration `yaml:"timeout"`
	ResyncLimit int           `yaml:"resync_limit"`
	Checksum    bool          `yaml:"checksum"`
	MaxBuffered int           `yaml:"max_buffered,omitempty"`
	Trace       string        `yaml:"trace"`
	Lang        string        `yaml:"lang"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Baud:    int(hostport.DefaultBaudRate),
		Timeout: hostport.DefaultTimeout,
	}
}

// DefaultPath returns the default config file path: ~/.hostport/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".hostport", "config.yaml")
	}
	return filepath.Join(home, ".hostport", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns the default Config with no error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ChannelConfig converts the file configuration to a channel configuration.
// An empty header or terminator selects the default marker; "none" disables it.
func (c *Config) ChannelConfig() (hostport.Config, error) {
	header, err := parseMarker(c.Header, hostport.DefaultHeader)
	if err != nil {
		return hostport.Config{}, fmt.Errorf("header: %w", err)
	}
	terminator, err := parseMarker(c.Terminator, hostport.DefaultTerminator)
	if err != nil {
		return hostport.Config{}, fmt.Errorf("terminator: %w", err)
	}
	ret := hostport.Config{
		Port:        c.Port,
		Device:      c.Device,
		BaudRate:    gxcommon.BaudRate(c.Baud),
		Header:      header,
		Terminator:  terminator,
		Timeout:     c.Timeout,
		ResyncLimit: c.ResyncLimit,
		Checksum:    c.Checksum,
		MaxBuffered: c.MaxBuffered,
	}
	return ret, ret.Validate()
}

func parseMarker(value string, def hostport.Marker) (hostport.Marker, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	return hostport.ParseMarker(value)
}
