package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "todo"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultLogFileName    = "todo.log"
	DefaultUpdateURL      = "https://github.com/Yasar195/rust_cli_todo/releases/latest/download/version.json"
)

// Keymap lists the keys bound to each action. Every action accepts more
// than one key; the names follow bubbletea's KeyMsg.String() form.
type Keymap struct {
	Quit        []string `toml:"quit"`
	Back        []string `toml:"back"`
	Up          []string `toml:"up"`
	Down        []string `toml:"down"`
	Add         []string `toml:"add"`
	Delete      []string `toml:"delete"`
	Toggle      []string `toml:"toggle"`
	Confirm     []string `toml:"confirm"`
	Cancel      []string `toml:"cancel"`
	SwitchField []string `toml:"switch_field"`
	Yes         []string `toml:"yes"`
	No          []string `toml:"no"`
}

type Update struct {
	URL string `toml:"url"`
}

type Config struct {
	DataDir  string `toml:"data_dir"`
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`
	Keys     Keymap `toml:"keys"`
	Update   Update `toml:"update"`
}

// DatabasePath returns the configured database file, falling back to
// tasks.db inside the data directory.
func (c Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, DefaultDBName)
}

// SetDataDir moves the data directory to dir. A db_path from the file is
// dropped so the database follows the directory given on the command line.
func (c *Config) SetDataDir(dir string) {
	c.DataDir = dir
	c.DBPath = ""
}

func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, DefaultLogFileName)
}

// ResolveConfigPath honours $TODO_CONFIG, then the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv("TODO_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// DefaultDataDir is %APPDATA%\todo on Windows and $XDG_DATA_HOME/todo
// (or ~/.local/share/todo) elsewhere.
func DefaultDataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var loaded Config
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	loaded.fillDefaults()
	return loaded, nil
}

// fillDefaults restores anything a hand-edited file blanked out.
func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Update.URL == "" {
		c.Update.URL = def.Update.URL
	}
	keys := []struct {
		dst *[]string
		def []string
	}{
		{&c.Keys.Quit, def.Keys.Quit},
		{&c.Keys.Back, def.Keys.Back},
		{&c.Keys.Up, def.Keys.Up},
		{&c.Keys.Down, def.Keys.Down},
		{&c.Keys.Add, def.Keys.Add},
		{&c.Keys.Delete, def.Keys.Delete},
		{&c.Keys.Toggle, def.Keys.Toggle},
		{&c.Keys.Confirm, def.Keys.Confirm},
		{&c.Keys.Cancel, def.Keys.Cancel},
		{&c.Keys.SwitchField, def.Keys.SwitchField},
		{&c.Keys.Yes, def.Keys.Yes},
		{&c.Keys.No, def.Keys.No},
	}
	for _, k := range keys {
		if len(*k.dst) == 0 {
			*k.dst = k.def
		}
	}
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
		Keys:     DefaultKeymap(),
		Update:   Update{URL: DefaultUpdateURL},
	}
}

func DefaultKeymap() Keymap {
	return Keymap{
		Quit:        []string{"q"},
		Back:        []string{"esc", "q", "b"},
		Up:          []string{"up", "k"},
		Down:        []string{"down", "j"},
		Add:         []string{"a"},
		Delete:      []string{"d", "delete"},
		Toggle:      []string{" "},
		Confirm:     []string{"enter"},
		Cancel:      []string{"esc"},
		SwitchField: []string{"tab"},
		Yes:         []string{"y", "Y", "enter"},
		No:          []string{"n", "N", "esc"},
	}
}
