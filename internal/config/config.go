// Package config loads the adforge configuration file.
//
// Configuration is TOML, looked up at the path given on the command
// line or at ~/.config/adforge/config.toml. Every field has a working
// default; a missing file is not an error.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/adforge/adforge/pkg/errors"
)

const appName = "adforge"

// Config is the full application configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Templates Templates `toml:"templates"`
	Cache     Cache     `toml:"cache"`
	Translate Translate `toml:"translate"`
	Render    Render    `toml:"render"`
}

// Server configures the editor HTTP server.
type Server struct {
	Addr string `toml:"addr"`
}

// Templates configures where creative templates are loaded from.
// When URL is set the HTTP loader is used; otherwise Dir.
type Templates struct {
	Dir   string   `toml:"dir"`
	URL   string   `toml:"url"`
	Names []string `toml:"names"`
}

// Cache selects the cache backend. RedisURL wins over the file cache;
// Disabled turns caching off entirely.
type Cache struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTLDays  int    `toml:"ttl_days"`
}

// TTL returns the configured cache lifetime.
func (c Cache) TTL() time.Duration {
	days := c.TTLDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// Translate configures the translation backend chain.
type Translate struct {
	SourceLang string `toml:"source_lang"`
	LibreURL   string `toml:"libre_url"`
	LibreKey   string `toml:"libre_key"`
	PaceMS     int    `toml:"pace_ms"`
}

// Render configures the external render tools.
type Render struct {
	ChromiumBinary string  `toml:"chromium_binary"`
	FFmpegBinary   string  `toml:"ffmpeg_binary"`
	ShotScale      float64 `toml:"shot_scale"`
	BlurIntensity  float64 `toml:"blur_intensity"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:    Server{Addr: "127.0.0.1:8090"},
		Templates: Templates{Dir: "templates"},
		Cache:     Cache{TTLDays: 30},
		Translate: Translate{SourceLang: "en", PaceMS: 300},
	}
}

// DefaultPath returns the standard config location, following XDG.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path, falling back to DefaultPath when path
// is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}
