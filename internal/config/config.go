// Package config loads client settings from defaults, an optional .env file,
// an optional YAML file and COACH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Validator is implemented by config sections that can check themselves.
type Validator interface {
	Validate() error
}

type Config struct {
	API     APIConfig     `yaml:"api"`
	DB      DBConfig      `yaml:"db"`
	Planner PlannerConfig `yaml:"planner"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
	LogCalls  bool   `yaml:"log_calls"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type PlannerConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BackoffMs   int `yaml:"backoff_ms"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			URL:       "http://localhost:8080",
			TimeoutMs: 30000,
		},
		DB: DBConfig{
			Path: defaultDBPath(),
		},
		Planner: PlannerConfig{
			MaxAttempts: 5,
			BackoffMs:   1000,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load builds the effective configuration. A missing .env or config file is
// not an error; a malformed one is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(".env"); err != nil {
		return cfg, err
	}
	if path := os.Getenv("COACH_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a YAML file into target after expanding ${VAR} references.
// Fields absent from the file keep their current values.
func LoadFile[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config file %s: %w", filename, err)
		}
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// Load never overrides variables that are already set.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COACH_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("COACH_HTTP_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.API.TimeoutMs = n
		}
	}
	if v := os.Getenv("COACH_LOG_CALLS"); v != "" {
		cfg.API.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("COACH_DB"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("COACH_PLAN_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Planner.MaxAttempts = n
		}
	}
	if v := os.Getenv("COACH_PLAN_BACKOFF_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Planner.BackoffMs = n
		}
	}
	if v := os.Getenv("COACH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.TimeoutMs, validation.Required, validation.Min(1)),
	)
}

func (c *DBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

func (c *PlannerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&c.BackoffMs, validation.Min(0)),
	)
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// SlogLevel maps the configured level name onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// NewLogger returns a text logger writing to w at the configured level.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".coach", "coach.db")
	}
	return filepath.Join(home, ".coach", "coach.db")
}
