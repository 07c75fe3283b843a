package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nevroth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "sqlite3", c.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, c.HabitEditWindow)
	assert.Equal(t, 3, c.RequiredHabits)
	assert.Equal(t, 256, c.SendBuffer)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgs(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	path := writeConfig(t, `
addr: ":9090"
database_driver: postgres
database_dsn: "postgres://u:p@db:5432/nevroth?sslmode=disable"
habit_edit_window: 10m
log:
  format: json
`)

	cfg, err := LoadConfig([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Minute, cfg.HabitEditWindow)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.RequiredHabits)
}

func TestLoadConfig_FlagsOverrideYAML(t *testing.T) {
	path := writeConfig(t, "addr: \":9090\"\nrequired_habits: 5\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadConfig([]string{"-a", ":7070", "--habit-edit-window", "90s"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.HabitEditWindow)
	assert.Equal(t, 5, cfg.RequiredHabits)
}

func TestLoadConfig_UnknownYAMLKey(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	path := writeConfig(t, "adr: \":9090\"\n")

	_, err := LoadConfig([]string{"--config", path})
	assert.Error(t, err)
}

func TestLoadConfig_EmptyYAML(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	path := writeConfig(t, "")

	cfg, err := LoadConfig([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	_, err := LoadConfig([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.DatabaseDriver = "mysql" }},
		{"secret", func(c *Config) { c.SecretKey = "" }},
		{"window", func(c *Config) { c.HabitEditWindow = 0 }},
		{"required habits", func(c *Config) { c.RequiredHabits = 0 }},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"send buffer", func(c *Config) { c.SendBuffer = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	c := Config{Timezone: "Local"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Timezone = "UTC"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
