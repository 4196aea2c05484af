// Package config loads storefront settings: defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fjod/freshfruit-storefront/internal/session"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing configuration")
)

type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	RazorpayKey    string        `yaml:"razorpay_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Session        SessionConfig `yaml:"session"`
	Log            LogConfig     `yaml:"log"`
	Payment        PaymentConfig `yaml:"payment"`
	TraceStdout    bool          `yaml:"trace_stdout"`
}

type SessionConfig struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PaymentConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	ScriptURL  string `yaml:"script_url"`
}

func Default() *Config {
	return &Config{
		RequestTimeout: 10 * time.Second,
		Session: SessionConfig{
			Driver:    session.DriverSQLite,
			Path:      defaultSessionPath(),
			RedisAddr: "localhost:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Payment: PaymentConfig{
			ListenAddr: "127.0.0.1:0",
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront-session.db"
	}
	return filepath.Join(dir, "freshfruit", "session.db")
}

// Load applies the file at path (if non-empty) and then the environment on top
// of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w: %v", path, ErrInvalidConfiguration, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.BackendURL = getEnv("BACKEND_URL", getEnv("VITE_BACKEND_URL", c.BackendURL))
	c.RazorpayKey = getEnv("RAZORPAY_KEY", getEnv("VITE_RAZORPAY_KEY", c.RazorpayKey))
	c.Session.Driver = getEnv("STOREFRONT_SESSION_DRIVER", c.Session.Driver)
	c.Session.Path = getEnv("STOREFRONT_SESSION_PATH", c.Session.Path)
	c.Session.RedisAddr = getEnv("REDIS_ADDR", c.Session.RedisAddr)
	c.Session.RedisPassword = getEnv("REDIS_PASSWORD", c.Session.RedisPassword)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Payment.ListenAddr = getEnv("PAYMENT_LISTEN_ADDR", c.Payment.ListenAddr)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT %q: %w", v, ErrInvalidConfiguration)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("TRACE_STDOUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACE_STDOUT %q: %w", v, ErrInvalidConfiguration)
		}
		c.TraceStdout = b
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend url is required (BACKEND_URL): %w", ErrMissingConfiguration)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) URL: %w", c.BackendURL, ErrInvalidConfiguration)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfiguration)
	}
	switch c.Session.Driver {
	case session.DriverSQLite, session.DriverRedis:
	default:
		return fmt.Errorf("unknown session driver %q: %w", c.Session.Driver, ErrInvalidConfiguration)
	}
	return nil
}

// SessionStore returns the session package settings.
func (c *Config) SessionStore() session.Config {
	return session.Config{
		Driver:        c.Session.Driver,
		Path:          c.Session.Path,
		RedisAddr:     c.Session.RedisAddr,
		RedisPassword: c.Session.RedisPassword,
	}
}
