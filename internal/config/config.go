// =============================================================================
// File Processing Engine - Configuration Module
// =============================================================================
//
// This module loads the engine configuration. Values are layered, lowest
// precedence first:
//   1. Built-in defaults
//   2. Configuration file (YAML by default; JSON and TOML by extension)
//   3. Environment variables prefixed with ENGINE_ (ENGINE_SOURCE_PATH, ...)
//   4. Command-line flags
//
// KEYS:
//   source.path        Directory scanned for input files (required)
//   source.extension   Input file extension (default ".txt")
//   destination.path   Directory receiving the reports (required)
//   poll_interval      Pause between scans (default 2s)
//   workers            Worker pool size (default 2 × CPUs)
//   log.level          debug | info | warn | error (default info)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/dispatcher"
	"github.com/ginjaninja78/file-processing-engine/internal/logging"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is prepended to every environment variable.
	EnvPrefix = "ENGINE"

	// DefaultConfigName is searched in the working directory when no
	// configuration file is given.
	DefaultConfigName = "config"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the engine configuration.
type Config struct {
	// Source describes where input files arrive.
	Source SourceConfig `mapstructure:"source"`

	// Destination describes where reports are written.
	Destination DestinationConfig `mapstructure:"destination"`

	// PollInterval is the pause between two directory scans.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Workers is the number of files processed concurrently.
	Workers int `mapstructure:"workers"`

	// Log controls the logging sink.
	Log LogConfig `mapstructure:"log"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

// SourceConfig is the input side.
type SourceConfig struct {
	Path      string `mapstructure:"path" yaml:"path"`
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// DestinationConfig is the output side.
type DestinationConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"source":      "source.path",
	"extension":   "source.extension",
	"destination": "destination.path",
	"interval":    "poll_interval",
	"workers":     "workers",
	"log-level":   "log.level",
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load builds the configuration from defaults, the config file, the
// environment and flags.
//
// PARAMETERS:
//   - cfgFile: Explicit configuration file. When empty, "config.*" in the
//     working directory is used if present.
//   - flags: The command's flag set. May be nil.
//
// RETURNS:
//   - The merged configuration with defaults applied. It is not validated;
//     call Validate before use.
//   - An error if a configuration file cannot be read or decoded.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	applyDefaults(&cfg)
	return &cfg, nil
}

// setDefaults registers every key so that environment variables are picked
// up by Unmarshal even when no file sets them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.path", "")
	v.SetDefault("source.extension", watcher.DefaultExtension)
	v.SetDefault("destination.path", "")
	v.SetDefault("poll_interval", dispatcher.DefaultPollInterval)
	v.SetDefault("workers", 0)
	v.SetDefault("log.level", "info")
}

// applyDefaults replaces out-of-range values.
func applyDefaults(cfg *Config) {
	if cfg.Source.Extension == "" {
		cfg.Source.Extension = watcher.DefaultExtension
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = dispatcher.DefaultPollInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = dispatcher.DefaultWorkers()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that the configuration can run the engine.
// Both directories must already exist; they are never created.
func (c *Config) Validate(fs afero.Fs) error {
	var errs []error

	if c.Source.Path == "" {
		errs = append(errs, errors.New("source.path is required"))
	}
	if c.Destination.Path == "" {
		errs = append(errs, errors.New("destination.path is required"))
	}
	if !strings.HasPrefix(c.Source.Extension, ".") {
		errs = append(errs, fmt.Errorf("source.extension %q must start with a dot", c.Source.Extension))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	files := utils.NewFileManager(fs)
	if err := files.CheckDirectory(c.Source.Path); err != nil {
		errs = append(errs, fmt.Errorf("source.path: %w", err))
	}
	if err := files.CheckDirectory(c.Destination.Path); err != nil {
		errs = append(errs, fmt.Errorf("destination.path: %w", err))
	}
	if sameDir(c.Source.Path, c.Destination.Path) {
		errs = append(errs, errors.New("source.path and destination.path must differ, reports would be read back as input"))
	}

	return errors.Join(errs...)
}

// sameDir compares two directory paths after cleaning.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// =============================================================================
// RENDERING
// =============================================================================

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	view := struct {
		Source       SourceConfig      `yaml:"source"`
		Destination  DestinationConfig `yaml:"destination"`
		PollInterval string            `yaml:"poll_interval"`
		Workers      int               `yaml:"workers"`
		Log          LogConfig         `yaml:"log"`
	}{
		Source:       c.Source,
		Destination:  c.Destination,
		PollInterval: c.PollInterval.String(),
		Workers:      c.Workers,
		Log:          c.Log,
	}
	return yaml.Marshal(view)
}
