package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "taskflow"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskflow.db"
	DefaultLogName        = "taskflow.log"
)

// Environment variables that override values from the config file.
const (
	EnvConfig  = "TASKFLOW_CONFIG"
	EnvDBPath  = "TASKFLOW_DB_PATH"
	EnvLogPath = "TASKFLOW_LOG_PATH"
	EnvDebug   = "TASKFLOW_DEBUG"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Detail        string `toml:"detail"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	Edit          string `toml:"edit"`
	Search        string `toml:"search"`
	CycleStatus   string `toml:"cycle_status"`
	CyclePriority string `toml:"cycle_priority"`
	CycleCategory string `toml:"cycle_category"`
	CycleGroup    string `toml:"cycle_group"`
	ClearFilters  string `toml:"clear_filters"`
	NewCategory   string `toml:"new_category"`
	Reload        string `toml:"reload"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	LogPath       string `toml:"log_path"`
	Debug         bool   `toml:"debug"`
	DefaultFilter string `toml:"default_filter"`
	// DefaultGroup pins the grouping. Empty follows the status filter.
	DefaultGroup  string `toml:"default_group"`
	Keys          Keymap `toml:"keys"`
}

// LoadEnv reads KEY=value pairs from the given files (".env" when none are
// named) into the process environment. Variables already set win, and
// missing files are ignored. A file that exists but cannot be parsed is an
// error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ResolveConfigPath honours TASKFLOW_CONFIG before the XDG default.
func ResolveConfigPath() string {
	return getEnv(EnvConfig, filepath.Join(DefaultConfigDir(), DefaultConfigFileName))
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Environment overrides are applied last and never
// written back.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return applyEnv(cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg = fillDefaults(cfg, filepath.Dir(path))
	return applyEnv(cfg)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg Config) (Config, error) {
	cfg.DBPath = getEnv(EnvDBPath, cfg.DBPath)
	cfg.LogPath = getEnv(EnvLogPath, cfg.LogPath)
	if v, ok := os.LookupEnv(EnvDebug); ok {
		debug, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, err
		}
		cfg.Debug = debug
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// fillDefaults restores values a hand-edited file left blank, including
// keys added after the file was first written.
func fillDefaults(cfg Config, dir string) Config {
	def := defaultConfig(dir)
	cfg.DBPath = resolvePath(cfg.DBPath, def.DBPath, dir)
	cfg.LogPath = resolvePath(cfg.LogPath, def.LogPath, dir)
	if cfg.DefaultFilter == "" {
		cfg.DefaultFilter = def.DefaultFilter
	}

	k, d := &cfg.Keys, def.Keys
	setDefault(&k.Quit, d.Quit)
	setDefault(&k.Add, d.Add)
	setDefault(&k.Up, d.Up)
	setDefault(&k.Down, d.Down)
	setDefault(&k.Toggle, d.Toggle)
	setDefault(&k.Delete, d.Delete)
	setDefault(&k.Detail, d.Detail)
	setDefault(&k.Confirm, d.Confirm)
	setDefault(&k.Cancel, d.Cancel)
	setDefault(&k.Edit, d.Edit)
	setDefault(&k.Search, d.Search)
	setDefault(&k.CycleStatus, d.CycleStatus)
	setDefault(&k.CyclePriority, d.CyclePriority)
	setDefault(&k.CycleCategory, d.CycleCategory)
	setDefault(&k.CycleGroup, d.CycleGroup)
	setDefault(&k.ClearFilters, d.ClearFilters)
	setDefault(&k.NewCategory, d.NewCategory)
	setDefault(&k.Reload, d.Reload)
	return cfg
}

// resolvePath anchors a relative file path at the config directory.
func resolvePath(path, fallback, dir string) string {
	switch {
	case path == "":
		return fallback
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(dir, path)
	}
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:        filepath.Join(dir, DefaultDBName),
		LogPath:       filepath.Join(dir, DefaultLogName),
		DefaultFilter: "all",
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			Delete:        "d",
			Detail:        "enter",
			Confirm:       "enter",
			Cancel:        "esc",
			Edit:          "e",
			Search:        "/",
			CycleStatus:   "s",
			CyclePriority: "p",
			CycleCategory: "c",
			CycleGroup:    "g",
			ClearFilters:  "x",
			NewCategory:   "n",
			Reload:        "r",
		},
	}
}
