package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
// Se carga desde YAML y se puede sobreescribir con variables de entorno.
type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// pg | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinIdleConns    int    `yaml:"min_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		Secret     string `yaml:"secret"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Token   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"token"`
	} `yaml:"rate"`
}

// Load lee el archivo YAML (si existe) y aplica overrides de entorno.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt.secret is required (or TOKENSMITH_JWT_SECRET)")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr(&c.App.Env, "TOKENSMITH_ENV")
	setStr(&c.App.LogLevel, "TOKENSMITH_LOG_LEVEL")
	setStr(&c.Server.Addr, "TOKENSMITH_ADDR")
	setStr(&c.Storage.Driver, "TOKENSMITH_STORAGE_DRIVER")
	setStr(&c.Storage.DSN, "TOKENSMITH_STORAGE_DSN")
	setStr(&c.Cache.Kind, "TOKENSMITH_CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "TOKENSMITH_REDIS_ADDR")
	setStr(&c.Cache.Redis.Password, "TOKENSMITH_REDIS_PASSWORD")
	setInt(&c.Cache.Redis.DB, "TOKENSMITH_REDIS_DB")
	setStr(&c.JWT.Issuer, "TOKENSMITH_JWT_ISSUER")
	setStr(&c.JWT.Secret, "TOKENSMITH_JWT_SECRET")
	setStr(&c.JWT.AccessTTL, "TOKENSMITH_JWT_ACCESS_TTL")
	setStr(&c.JWT.RefreshTTL, "TOKENSMITH_JWT_REFRESH_TTL")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "http://localhost:8080"
	}
	if c.Rate.Token.Limit == 0 {
		c.Rate.Token.Limit = 60
	}
	if c.Rate.Token.Window == "" {
		c.Rate.Token.Window = "1m"
	}
}

// AccessTTL parsea el TTL del access token (default 1h).
func (c *Config) AccessTTL() time.Duration {
	return parseDur(c.JWT.AccessTTL, time.Hour)
}

// RefreshTTL parsea el TTL del refresh token (default 30 días).
func (c *Config) RefreshTTL() time.Duration {
	return parseDur(c.JWT.RefreshTTL, 30*24*time.Hour)
}

// RateWindow parsea la ventana del rate limiter del token endpoint.
func (c *Config) RateWindow() time.Duration {
	return parseDur(c.Rate.Token.Window, time.Minute)
}

func parseDur(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
