// Package config loads askboard settings from YAML and the environment.
package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration.
// Sources, first match wins:
//  1. explicit path passed to Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables are always applied on top of a file.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	SiteURL  string         `yaml:"site_url" env:"SITE_URL" env-default:"http://localhost:8080"`
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Session  SessionConfig  `yaml:"session"`
	Notify   NotifyConfig   `yaml:"notify"`
	Mail     MailConfig     `yaml:"mail"`
	Cache    CacheConfig    `yaml:"cache"`
	Admin    AdminConfig    `yaml:"admin"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig selects the datastore. URL takes "postgres://...", "postgres=<dsn>"
// or "sqlite://<path>".
type DBConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL" env-default:"sqlite://data/askboard.sqlite"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"20"`
}

type SessionConfig struct {
	Name   string `yaml:"name" env:"SESSION_NAME" env-default:"askboard_session"`
	Secret string `yaml:"secret" env:"SESSION_SECRET" env-default:"secret_key_change_me"`
}

// NotifyConfig controls notification fan-out. With Inline set, notices are
// written synchronously after the triggering action instead of being queued.
type NotifyConfig struct {
	Inline    bool `yaml:"inline" env:"NOTIFY_INLINE"`
	QueueSize int  `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE" env-default:"1000"`
}

// MailConfig is optional; mail is disabled unless every field is set.
type MailConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASS"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// Enabled reports whether all SMTP settings are present.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != "" && m.From != ""
}

type CacheConfig struct {
	Size int           `yaml:"size" env:"CACHE_SIZE" env-default:"500"`
	TTL  time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"1m"`
}

// AdminConfig seeds an admin account on startup when both fields are set.
type AdminConfig struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration. A .env file, if present, is loaded into the
// process environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}
	if c.DB.MaxConns <= 0 {
		return fmt.Errorf("db.max_conns must be > 0")
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queue_size must be > 0")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be > 0")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	return nil
}
