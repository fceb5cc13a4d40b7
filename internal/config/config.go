// Package config loads and saves the tool's settings file.
//
// The file is YAML. Every load and save is checked against an embedded CUE
// schema, so a hand-edited file with a bad sort mode or an empty database
// path is rejected with a pointed message instead of failing later.
//
// A missing file is created with defaults. A file written by an older
// version is replaced with defaults, matching how the console tool resets
// its settings after an upgrade.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/homesort/internal/order"
)

// Version is the current settings format. Files with any other version
// are reset to defaults on load.
const Version = 1

// DefaultDataDir holds loadouts, the undo backup and the settings file.
const DefaultDataDir = "homesort"

//go:embed schema.cue
var schemaSource string

// Paths locates the live files and the tool's own data directory.
type Paths struct {
	DB      string `yaml:"db" json:"db"`
	INI     string `yaml:"ini" json:"ini"` // optional layout metadata file
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// LoadoutDir is where named snapshots are kept.
func (p Paths) LoadoutDir() string {
	return filepath.Join(p.DataDir, "loadouts")
}

// BackupDir is where the single undo backup is kept.
func (p Paths) BackupDir() string {
	return filepath.Join(p.DataDir, "backups")
}

// Sort holds the ordering choices as they appear in the file.
type Sort struct {
	By      string `yaml:"by" json:"by"`
	Folders string `yaml:"folders" json:"folders"`
	Mode    string `yaml:"mode" json:"mode"`
}

// Power configures the keep-awake ticker.
type Power struct {
	TickInterval string `yaml:"tick_interval" json:"tick_interval"`
}

// Config is the whole settings file.
type Config struct {
	Version int   `yaml:"version" json:"version"`
	Paths   Paths `yaml:"paths" json:"paths"`
	Sort    Sort  `yaml:"sort" json:"sort"`
	Power   Power `yaml:"power" json:"power"`
}

// Default returns the settings written for a fresh install.
func Default() *Config {
	return &Config{
		Version: Version,
		Paths: Paths{
			DB:      "app.db",
			INI:     "iconlayout.ini",
			DataDir: DefaultDataDir,
		},
		Sort: Sort{
			By:      "title",
			Folders: "both",
			Mode:    "asc",
		},
		Power: Power{TickInterval: "10s"},
	}
}

// DefaultPath is the settings file used when --config is not given.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir, "config.yaml")
}

// Load reads the settings file at path.
//
// A missing file is created with defaults. A file whose version differs
// from Version is overwritten with defaults. Anything else that fails to
// parse or validate is an error and the file is left alone.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if probe.Version != Version {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save validates c and writes it to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks c against the embedded CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.Encode(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}

// OrderOptions converts the sort section into ordering options.
func (c *Config) OrderOptions() (order.Options, error) {
	mode, err := order.ParseMode(c.Sort.Mode)
	if err != nil {
		return order.Options{}, err
	}
	key, err := order.ParseKey(c.Sort.By)
	if err != nil {
		return order.Options{}, err
	}
	folders, err := order.ParseFolderPolicy(c.Sort.Folders)
	if err != nil {
		return order.Options{}, err
	}
	return order.Options{Mode: mode, Key: key, Folders: folders}, nil
}

// TickInterval parses the power tick interval.
func (c *Config) TickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Power.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("parse tick interval: %w", err)
	}
	return d, nil
}

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{
	"paths.db",
	"paths.ini",
	"paths.data_dir",
	"sort.by",
	"sort.folders",
	"sort.mode",
	"power.tick_interval",
}

// Set changes one setting by its dotted key and revalidates. On a
// validation failure c is left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c
	switch strings.ToLower(key) {
	case "paths.db":
		next.Paths.DB = value
	case "paths.ini":
		next.Paths.INI = value
	case "paths.data_dir":
		next.Paths.DataDir = value
	case "sort.by":
		next.Sort.By = strings.ToLower(value)
	case "sort.folders":
		next.Sort.Folders = strings.ToLower(value)
	case "sort.mode":
		next.Sort.Mode = strings.ToLower(value)
	case "power.tick_interval":
		next.Power.TickInterval = value
	default:
		return fmt.Errorf("unknown setting %q: must be one of %v", key, Keys)
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*c = next
	return nil
}

// Get returns one setting by its dotted key.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "paths.db":
		return c.Paths.DB, nil
	case "paths.ini":
		return c.Paths.INI, nil
	case "paths.data_dir":
		return c.Paths.DataDir, nil
	case "sort.by":
		return c.Sort.By, nil
	case "sort.folders":
		return c.Sort.Folders, nil
	case "sort.mode":
		return c.Sort.Mode, nil
	case "power.tick_interval":
		return c.Power.TickInterval, nil
	}
	return "", fmt.Errorf("unknown setting %q: must be one of %v", key, Keys)
}
