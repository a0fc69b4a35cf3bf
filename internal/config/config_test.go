package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "source: app/schemas/1.json\ndestination: out/schema.sql\nversion_comment: true\nformat: markdown\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "app/schemas/1.json", cfg.Source)
	assert.Equal(t, "out/schema.sql", cfg.Destination)
	assert.Equal(t, "markdown", cfg.Format)
	assert.True(t, cfg.VersionComment)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(DefaultFileName, []byte("source: schema.json\n"), 0644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "schema.json", cfg.Source)
	assert.Equal(t, DefaultDestination, cfg.Destination)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ROOMDDL_DESTINATION", "env/ddl.sql")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "env/ddl.sql", cfg.Destination)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, *Default(), cfg)

	assert.Error(t, WriteDefault(path), "existing file must not be overwritten")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := ParseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
