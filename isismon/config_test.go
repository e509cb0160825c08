package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, DefaultLogLevel, c.Log.Level)
	assert.Equal(t, DefaultListen, c.HTTP.Listen)
	assert.Equal(t, DefaultSweepInterval, c.DB.SweepInterval)
	assert.Error(t, c.Validate())
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "isismon.yml", `
log:
  level: DEBUG
  debug: lsp,topo
capture:
  interface: eth1
http:
  listen: 127.0.0.1:9090
db:
  max_changes: 100
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", c.Log.Level)
	assert.Equal(t, "lsp,topo", c.Log.Debug)
	assert.Equal(t, "eth1", c.Capture.Interface)
	assert.Equal(t, "127.0.0.1:9090", c.HTTP.Listen)
	assert.Equal(t, 100, c.DB.MaxChanges)
	assert.Equal(t, DefaultSweepInterval, c.DB.SweepInterval)
	assert.NoError(t, c.Validate())

	_, err = LoadConfig(writeFile(t, "bad.yaml", "capture:\n  snaplen: 10\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "isismon.toml", `
[log]
trace = "packet"

[capture]
pcap_file = "isis.pcap"

[db]
sweep_interval = 5
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, c.Log.Level)
	assert.Equal(t, "packet", c.Log.Trace)
	assert.Equal(t, "isis.pcap", c.Capture.PcapFile)
	assert.Equal(t, 5, c.DB.SweepInterval)
	assert.Empty(t, c.HTTP.Listen)

	_, err = LoadConfig(writeFile(t, "bad.toml", "[capture]\nsnaplen = 10\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeFile(t, "bad2.toml", "[nope]\nx = 1\n"))
	assert.Error(t, err)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "isismon.json", "{}"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "broken.toml", "[log\n"))
	assert.Error(t, err)
}

func TestConfigOverride(t *testing.T) {
	flags := DefaultConfig()
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"-i", "eth2", "--debug", "all", "--sweep", "3"}))

	c := &Config{
		Log:     LogConfig{Level: "WARN", Debug: "lsp"},
		Capture: CaptureConfig{Interface: "eth1"},
		HTTP:    HTTPConfig{Listen: "127.0.0.1:1"},
		DB:      DBConfig{SweepInterval: 1, MaxChanges: 10},
	}
	c.Override(fs, flags)
	assert.Equal(t, &Config{
		Log:     LogConfig{Level: "WARN", Debug: "all"},
		Capture: CaptureConfig{Interface: "eth2"},
		HTTP:    HTTPConfig{Listen: "127.0.0.1:1"},
		DB:      DBConfig{SweepInterval: 3, MaxChanges: 10},
	}, c)
}
