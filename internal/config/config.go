package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/04pril/minesweeper-web/internal/board"
	"github.com/04pril/minesweeper-web/internal/gesture"
)

// Profile is one board configuration tuple.
type Profile struct {
	Name  string `mapstructure:"name"`
	Rows  int    `mapstructure:"rows"`
	Cols  int    `mapstructure:"cols"`
	Mines int    `mapstructure:"mines"`
}

type Profiles struct {
	Compact  Profile `mapstructure:"compact"`
	Standard Profile `mapstructure:"standard"`
}

type Gesture struct {
	LongPress time.Duration `mapstructure:"long_press"`
	DoubleTap time.Duration `mapstructure:"double_tap"`
	Slop      int           `mapstructure:"slop"`
}

type Cache struct {
	Name           string   `mapstructure:"name"`
	Dir            string   `mapstructure:"dir"`
	Assets         []string `mapstructure:"assets"`
	PopulateOnMiss bool     `mapstructure:"populate_on_miss"`
}

type Server struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
	Origin    string `mapstructure:"origin"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Profiles        Profiles `mapstructure:"profiles"`
	CompactMaxWidth int      `mapstructure:"compact_max_width"`
	Theme           string   `mapstructure:"theme"`
	Gesture         Gesture  `mapstructure:"gesture"`
	Cache           Cache    `mapstructure:"cache"`
	Server          Server   `mapstructure:"server"`
	Log             Log      `mapstructure:"log"`
}

// DefaultAssets is the browser build the offline cache pre-fetches.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/wasm_exec.js",
	"/minesweeper.wasm",
	"/manifest.json",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profiles.compact.name", "compact")
	v.SetDefault("profiles.compact.rows", 12)
	v.SetDefault("profiles.compact.cols", 9)
	v.SetDefault("profiles.compact.mines", 20)
	v.SetDefault("profiles.standard.name", "standard")
	v.SetDefault("profiles.standard.rows", 16)
	v.SetDefault("profiles.standard.cols", 30)
	v.SetDefault("profiles.standard.mines", 99)
	v.SetDefault("compact_max_width", 768)
	v.SetDefault("theme", "classic")

	g := gesture.DefaultConfig()
	v.SetDefault("gesture.long_press", g.LongPress)
	v.SetDefault("gesture.double_tap", g.DoubleTap)
	v.SetDefault("gesture.slop", g.Slop)

	v.SetDefault("cache.name", "minesweeper-v1")
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.assets", DefaultAssets)
	v.SetDefault("cache.populate_on_miss", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "web")
	v.SetDefault("server.origin", "")

	v.SetDefault("log.level", "info")
}

// New returns a viper instance with every default registered and
// MINESWEEPER_* environment overrides enabled. Callers may bind flags to it
// before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("minesweeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads an optional YAML file into v and decodes the result. An empty
// path uses defaults, environment and bound flags only.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default is the configuration with nothing overridden.
func Default() Config {
	cfg, err := Load(New(), "")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	for _, p := range []Profile{c.Profiles.Compact, c.Profiles.Standard} {
		if err := board.Validate(p.Rows, p.Cols, p.Mines); err != nil {
			errs = append(errs, fmt.Errorf("profile %s: %w", p.Name, err))
		}
	}
	if c.Gesture.LongPress <= 0 || c.Gesture.DoubleTap <= 0 || c.Gesture.Slop < 0 {
		errs = append(errs, fmt.Errorf("gesture thresholds must be positive: %+v", c.Gesture))
	}
	if c.Cache.Name == "" {
		errs = append(errs, errors.New("cache name is empty"))
	}
	return errors.Join(errs...)
}

// Classify picks the profile for a viewport width.
func (c Config) Classify(width int) Profile {
	if width > 0 && width <= c.CompactMaxWidth {
		return c.Profiles.Compact
	}
	return c.Profiles.Standard
}

func (c Config) GestureConfig() gesture.Config {
	return gesture.Config{
		LongPress: c.Gesture.LongPress,
		DoubleTap: c.Gesture.DoubleTap,
		Slop:      c.Gesture.Slop,
	}
}
