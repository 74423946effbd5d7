package manager

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultWidth  = 480
	DefaultHeight = 160
)

// Settings is the typed view of brux.yaml.
type Settings struct {
	ScheduleFile string
	Device       string
	Method       string
	Transfer     string
	Width        int
	Height       int
	RenderOutput string
	Eww          bool
	NotifyErrors bool
	Timezone     string
}

type ConfigManager struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

var Config = &ConfigManager{}

// ConfigDir is ~/.config/brux.
func ConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "brux")
	}
	return filepath.Join(configDir, "brux")
}

// ConfigPath is where brux.yaml lives.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "brux.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.file", "")
	v.SetDefault("display.device", "")
	v.SetDefault("display.method", "auto")
	v.SetDefault("display.transfer", "")
	v.SetDefault("surface.width", DefaultWidth)
	v.SetDefault("surface.height", DefaultHeight)
	v.SetDefault("render.output", filepath.Join(os.TempDir(), "brux-schedule.png"))
	v.SetDefault("render.eww", true)
	v.SetDefault("notify.errors", false)
	v.SetDefault("timezone", "Local")
}

// Load reads path (ConfigPath when empty). A missing file leaves the
// defaults in place; a malformed one is an error.
func (c *ConfigManager) Load(path string) (*viper.Viper, error) {
	if path == "" {
		path = ConfigPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return v, err
		}
	}

	c.mu.Lock()
	c.v = v
	c.path = path
	c.mu.Unlock()
	return v, nil
}

func (c *ConfigManager) Settings() Settings {
	c.mu.Lock()
	v := c.v
	c.mu.Unlock()

	if v == nil {
		v = viper.New()
		setDefaults(v)
	}
	return SettingsFrom(v)
}

func SettingsFrom(v *viper.Viper) Settings {
	return Settings{
		ScheduleFile: v.GetString("schedule.file"),
		Device:       v.GetString("display.device"),
		Method:       v.GetString("display.method"),
		Transfer:     v.GetString("display.transfer"),
		Width:        v.GetInt("surface.width"),
		Height:       v.GetInt("surface.height"),
		RenderOutput: v.GetString("render.output"),
		Eww:          v.GetBool("render.eww"),
		NotifyErrors: v.GetBool("notify.errors"),
		Timezone:     v.GetString("timezone"),
	}
}

// Location resolves Timezone, falling back to the local zone.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Watch calls onChange with fresh settings whenever the config file is
// written. It does nothing before Load.
func (c *ConfigManager) Watch(onChange func(Settings)) {
	c.mu.Lock()
	v := c.v
	c.mu.Unlock()
	if v == nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(SettingsFrom(v))
	})
	v.WatchConfig()
}
