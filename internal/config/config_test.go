package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/dispatcher"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("source", "", "")
	flags.String("destination", "", "")
	flags.Duration("interval", 0, "")
	flags.Int("workers", 0, "")
	return flags
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "engine.yaml", `
source:
  path: /data/in
  extension: .dat
destination:
  path: /data/out
poll_interval: 5s
workers: 3
log:
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.Source.Path)
	assert.Equal(t, ".dat", cfg.Source.Extension)
	assert.Equal(t, "/data/out", cfg.Destination.Path)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeConfig(t, "engine.toml",
		"poll_interval = \"3s\"\n\n[source]\npath = \"/toml/in\"\n\n[destination]\npath = \"/toml/out\"\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/toml/in", cfg.Source.Path)
	assert.Equal(t, "/toml/out", cfg.Destination.Path)
	assert.Equal(t, ".txt", cfg.Source.Extension)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "engine.yaml", "source:\n  path: /in\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ".txt", cfg.Source.Extension)
	assert.Equal(t, dispatcher.DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, dispatcher.DefaultWorkers(), cfg.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_NonPositiveValuesFallBack(t *testing.T) {
	path := writeConfig(t, "engine.yaml", "poll_interval: 0s\nworkers: -4\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, dispatcher.DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, dispatcher.DefaultWorkers(), cfg.Workers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "engine.yaml", "source:\n  path: /file/in\n")
	t.Setenv("ENGINE_SOURCE_PATH", "/env/in")
	t.Setenv("ENGINE_POLL_INTERVAL", "750ms")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/env/in", cfg.Source.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := writeConfig(t, "engine.yaml", "destination:\n  path: /file/out\n")
	t.Setenv("ENGINE_SOURCE_PATH", "/env/in")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--source", "/flag/in", "--interval", "10s", "--workers", "7"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "/flag/in", cfg.Source.Path)
	assert.Equal(t, "/file/out", cfg.Destination.Path, "unset flags keep lower layers")
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/in", 0755))
	require.NoError(t, fs.MkdirAll("/out", 0755))
	require.NoError(t, afero.WriteFile(fs, "/file", []byte("x"), 0644))

	valid := func() *Config {
		return &Config{
			Source:      SourceConfig{Path: "/in", Extension: ".txt"},
			Destination: DestinationConfig{Path: "/out"},
			Log:         LogConfig{Level: "info"},
		}
	}

	assert.NoError(t, valid().Validate(fs))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing source", func(c *Config) { c.Source.Path = "" }, "source.path is required"},
		{"missing destination", func(c *Config) { c.Destination.Path = "" }, "destination.path is required"},
		{"extension without dot", func(c *Config) { c.Source.Extension = "txt" }, "must start with a dot"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"source absent", func(c *Config) { c.Source.Path = "/nope" }, "source.path"},
		{"destination is a file", func(c *Config) { c.Destination.Path = "/file" }, "destination.path"},
		{"same directory", func(c *Config) { c.Destination.Path = "/in/" }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate(fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYAML(t *testing.T) {
	cfg := &Config{
		Source:       SourceConfig{Path: "/in", Extension: ".txt"},
		Destination:  DestinationConfig{Path: "/out"},
		PollInterval: 1500 * time.Millisecond,
		Workers:      4,
		Log:          LogConfig{Level: "warn"},
	}

	out, err := cfg.YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "1.5s", decoded["poll_interval"])
	assert.Equal(t, 4, decoded["workers"])
	assert.Equal(t, map[string]any{"path": "/in", "extension": ".txt"}, decoded["source"])
}
