package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/olablt/gio-routemap/tiles"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Map     MapConfig     `mapstructure:"map"`
	Tiles   TilesConfig   `mapstructure:"tiles"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Zoom      int     `mapstructure:"zoom"`
}

func (m MapConfig) Center() tiles.LatLng {
	return tiles.LatLng{Lat: m.CenterLat, Lng: m.CenterLon}
}

type TilesConfig struct {
	Mirrors         []string      `mapstructure:"mirrors"`
	URLTemplate     string        `mapstructure:"url_template"`
	UserAgent       string        `mapstructure:"user_agent"`
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	BackgroundDelay time.Duration `mapstructure:"background_delay"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	MaxEntries      int           `mapstructure:"max_entries"`
	Buffer          int           `mapstructure:"buffer"`
}

// LoaderOptions maps the tile settings onto the loader.
func (t TilesConfig) LoaderOptions() tiles.LoaderOptions {
	return tiles.LoaderOptions{
		Workers:         t.Workers,
		QueueSize:       t.QueueSize,
		BackgroundDelay: t.BackgroundDelay,
		FetchTimeout:    t.FetchTimeout,
		RetryInterval:   t.RetryInterval,
	}
}

func (t TilesConfig) MirrorOptions() tiles.MirrorOptions {
	return tiles.MirrorOptions{
		Mirrors:     t.Mirrors,
		URLTemplate: t.URLTemplate,
		UserAgent:   t.UserAgent,
		Timeout:     t.FetchTimeout,
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom fills v with defaults, the optional config file and the
// environment, then decodes it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("map.center_lat", 38.7223)
	v.SetDefault("map.center_lon", -9.1393)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("tiles.mirrors", tiles.DefaultMirrors)
	v.SetDefault("tiles.url_template", tiles.DefaultURLTemplate)
	v.SetDefault("tiles.user_agent", "MapRouteExplorer/1.0.0")
	v.SetDefault("tiles.workers", 15)
	v.SetDefault("tiles.queue_size", 256)
	v.SetDefault("tiles.background_delay", 50*time.Millisecond)
	v.SetDefault("tiles.fetch_timeout", 15*time.Second)
	v.SetDefault("tiles.retry_interval", 10*time.Second)
	v.SetDefault("tiles.max_entries", 0)
	v.SetDefault("tiles.buffer", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.addr", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: ROUTEMAP_TILES_WORKERS → tiles.workers
	v.SetEnvPrefix("ROUTEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be within [-90,90], got %v", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be within [-180,180], got %v", c.Map.CenterLon))
	}
	if c.Map.Zoom < tiles.MinZoom || c.Map.Zoom > tiles.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.zoom must be %d-%d, got %d", tiles.MinZoom, tiles.MaxZoom, c.Map.Zoom))
	}
	if len(c.Tiles.Mirrors) == 0 {
		errs = append(errs, "tiles.mirrors must list at least one host")
	}
	if !strings.Contains(c.Tiles.URLTemplate, "{z}") ||
		!strings.Contains(c.Tiles.URLTemplate, "{x}") ||
		!strings.Contains(c.Tiles.URLTemplate, "{y}") {
		errs = append(errs, fmt.Sprintf("tiles.url_template must contain {z}, {x} and {y}, got %q", c.Tiles.URLTemplate))
	}
	if c.Tiles.Workers <= 0 {
		errs = append(errs, "tiles.workers must be positive")
	}
	if c.Tiles.QueueSize <= 0 {
		errs = append(errs, "tiles.queue_size must be positive")
	}
	if c.Tiles.BackgroundDelay < 0 {
		errs = append(errs, "tiles.background_delay must not be negative")
	}
	if c.Tiles.FetchTimeout <= 0 {
		errs = append(errs, "tiles.fetch_timeout must be positive")
	}
	if c.Tiles.MaxEntries < 0 {
		errs = append(errs, "tiles.max_entries must not be negative")
	}
	if c.Tiles.Buffer < 0 {
		errs = append(errs, "tiles.buffer must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
