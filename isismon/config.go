package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml"
	"github.com/spf13/pflag"
)

// Config defaults.
const (
	DefaultLogLevel      = "INFO"
	DefaultListen        = "localhost:8080"
	DefaultSweepInterval = 1
)

// LogConfig selects the log level and the debug and trace flags.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	Debug string `yaml:"debug" toml:"debug"`
	Trace string `yaml:"trace" toml:"trace"`
}

// CaptureConfig selects where frames are read from. Exactly one of
// Interface or PcapFile is used, Interface wins if both are set.
type CaptureConfig struct {
	Interface string `yaml:"interface" toml:"interface"`
	PcapFile  string `yaml:"pcap_file" toml:"pcap_file"`
}

// HTTPConfig configures the management server. An empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen" toml:"listen"`
}

// DBConfig configures the LSP database.
type DBConfig struct {
	// SweepInterval is in seconds.
	SweepInterval int `yaml:"sweep_interval" toml:"sweep_interval"`
	MaxChanges    int `yaml:"max_changes" toml:"max_changes"`
}

// Config is the monitor configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" toml:"log"`
	Capture CaptureConfig `yaml:"capture" toml:"capture"`
	HTTP    HTTPConfig    `yaml:"http" toml:"http"`
	DB      DBConfig      `yaml:"db" toml:"db"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{HTTP: HTTPConfig{Listen: DefaultListen}}
	c.applyDefaults()
	return c
}

// applyDefaults fills the unset values.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.DB.SweepInterval <= 0 {
		c.DB.SweepInterval = DefaultSweepInterval
	}
}

// Validate checks the configuration is usable for a live run.
func (c *Config) Validate() error {
	if c.Capture.Interface == "" && c.Capture.PcapFile == "" {
		return fmt.Errorf("no capture interface or pcap file configured")
	}
	if c.DB.MaxChanges < 0 {
		return fmt.Errorf("invalid max_changes %d", c.DB.MaxChanges)
	}
	return nil
}

// LoadConfig reads the configuration file at path. The extension selects the
// format: .yaml or .yml for YAML, .toml for TOML. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f, yaml.Strict())
		if err = dec.Decode(c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		tree, err := toml.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err = checkTOMLKeys(tree); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err = tree.Unmarshal(c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unknown configuration format %q", ext)
	}
	c.applyDefaults()
	return c, nil
}

var tomlKeys = map[string][]string{
	"log":     {"level", "debug", "trace"},
	"capture": {"interface", "pcap_file"},
	"http":    {"listen"},
	"db":      {"sweep_interval", "max_changes"},
}

// checkTOMLKeys rejects keys the Config does not have.
func checkTOMLKeys(tree *toml.Tree) error {
	for _, table := range tree.Keys() {
		known, ok := tomlKeys[table]
		if !ok {
			return fmt.Errorf("unknown table %q", table)
		}
		sub, ok := tree.Get(table).(*toml.Tree)
		if !ok {
			return fmt.Errorf("%q is not a table", table)
		}
	next:
		for _, k := range sub.Keys() {
			for _, kk := range known {
				if k == kk {
					continue next
				}
			}
			return fmt.Errorf("unknown key %q in table %q", k, table)
		}
	}
	return nil
}

// AddFlags registers the command line overrides of c on fs. Values parsed
// from fs replace those read from the configuration file.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Capture.Interface, "interface", "i", c.Capture.Interface, "interface to capture on")
	fs.StringVarP(&c.Capture.PcapFile, "pcap", "r", c.Capture.PcapFile, "pcap file to read")
	fs.StringVarP(&c.HTTP.Listen, "listen", "l", c.HTTP.Listen, "management API listen address")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&c.Log.Debug, "debug", c.Log.Debug, "debug flags (http, lsp, packet, topo, update or all)")
	fs.StringVar(&c.Log.Trace, "trace", c.Log.Trace, "trace flags (http, lsp, packet, topo, update or all)")
	fs.IntVar(&c.DB.SweepInterval, "sweep", c.DB.SweepInterval, "LSP aging interval in seconds")
	fs.IntVar(&c.DB.MaxChanges, "max-changes", c.DB.MaxChanges, "number of topology changes kept")
}

// Override copies the flags set on fs from src to c.
func (c *Config) Override(fs *pflag.FlagSet, src *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "interface":
			c.Capture.Interface = src.Capture.Interface
		case "pcap":
			c.Capture.PcapFile = src.Capture.PcapFile
		case "listen":
			c.HTTP.Listen = src.HTTP.Listen
		case "log-level":
			c.Log.Level = src.Log.Level
		case "debug":
			c.Log.Debug = src.Log.Debug
		case "trace":
			c.Log.Trace = src.Log.Trace
		case "sweep":
			c.DB.SweepInterval = src.DB.SweepInterval
		case "max-changes":
			c.DB.MaxChanges = src.DB.MaxChanges
		}
	})
}
