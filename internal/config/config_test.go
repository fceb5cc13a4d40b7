package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homesort/internal/compare"
	"github.com/roach88/homesort/internal/order"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "defaults should be written back")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Paths.DB = "/data/app.db"
	cfg.Paths.INI = ""
	cfg.Sort = Sort{By: "titleid", Folders: "apps", Mode: "desc"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_StaleVersionResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	stale := "version: 0\nsort_by: 1\nsort_mode: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sort_mode", "stale file should be replaced")
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "version: 1\npaths: {db: app.db, ini: '', data_dir: d}\nsort: {by: title, folders: both, mode: asc, order: up}\npower: {tick_interval: 10s}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order")
}

func TestLoad_RejectsSchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "version: 1\npaths: {db: app.db, ini: '', data_dir: d}\nsort: {by: title, folders: both, mode: sideways}\npower: {tick_interval: 10s}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode")

	// The bad file is left for the user to fix.
	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, data, string(after))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.Paths.DB = "" }},
		{"empty data dir", func(c *Config) { c.Paths.DataDir = "" }},
		{"bad sort key", func(c *Config) { c.Sort.By = "size" }},
		{"bad folder policy", func(c *Config) { c.Sort.Folders = "none" }},
		{"bad interval", func(c *Config) { c.Power.TickInterval = "soon" }},
		{"zero version", func(c *Config) { c.Version = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("sort.mode", "DESC"))
	assert.Equal(t, "desc", cfg.Sort.Mode)

	require.NoError(t, cfg.Set("paths.db", "/tmp/app.db"))
	v, err := cfg.Get("paths.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/app.db", v)

	err = cfg.Set("sort.by", "size")
	require.Error(t, err)
	assert.Equal(t, "title", cfg.Sort.By, "failed Set must not change the config")

	assert.Error(t, cfg.Set("colour", "red"))
	_, err = cfg.Get("colour")
	assert.Error(t, err)
}

func TestOrderOptions(t *testing.T) {
	cfg := Default()
	cfg.Sort = Sort{By: "titleid", Folders: "folders", Mode: "desc"}

	opts, err := cfg.OrderOptions()
	require.NoError(t, err)
	assert.Equal(t, order.Options{Mode: order.ModeDesc, Key: compare.KeyTitleID, Folders: order.FoldersOnly}, opts)
}

func TestTickInterval(t *testing.T) {
	d, err := Default().TickInterval()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestPathsDirs(t *testing.T) {
	p := Paths{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "loadouts"), p.LoadoutDir())
	assert.Equal(t, filepath.Join("data", "backups"), p.BackupDir())
}
