package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDestination is the output path used when none is configured
	DefaultDestination = "build/ddl/ddl.sql"

	// DefaultFileName is the settings file searched for in the working directory
	DefaultFileName = "roomddl.yaml"

	envPrefix = "ROOMDDL"
)

// Config holds the extraction settings.
type Config struct {
	Source         string `mapstructure:"source" yaml:"source"`
	Destination    string `mapstructure:"destination" yaml:"destination"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
	Format         string `mapstructure:"format" yaml:"format"`
	VersionComment bool   `mapstructure:"version_comment" yaml:"version_comment"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns a Config pre-filled with defaults.
func Default() *Config {
	return &Config{
		Destination: DefaultDestination,
		Format:      "sql",
		LogLevel:    "warn",
	}
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source", d.Source)
	v.SetDefault("destination", d.Destination)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("version_comment", d.VersionComment)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the settings file (explicit path, or roomddl.yaml in the working
// directory when present), applies ROOMDDL_* environment overrides and
// decodes the result. Flags bound to v before Load take precedence.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The settings file is optional unless named explicitly
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration to path, refusing to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}
