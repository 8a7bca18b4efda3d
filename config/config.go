package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration
const (
	DefaultPort          = 8080
	DefaultScalerPath    = "artifacts/scaler.json"
	DefaultModelPath     = "artifacts/diabetes_model.json"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
	DefaultCookieName    = "healthrisk_session"
)

// Config holds everything the server needs at startup
type Config struct {
	// Port is the HTTP listen port
	Port int `yaml:"port"`

	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Session   SessionConfig   `yaml:"session"`

	// DatabaseURL selects the Postgres session store when set.
	// Empty keeps session results in process memory.
	DatabaseURL string `yaml:"database_url"`
}

// ArtifactsConfig points at the pre-fit scaler and classifier
type ArtifactsConfig struct {
	ScalerPath string `yaml:"scaler_path"`
	ModelPath  string `yaml:"model_path"`
}

// SessionConfig controls the session cookie and result lifetime
type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

// Load builds the configuration in layers: defaults, then the YAML file at
// path (skipped when path is empty), then environment variables. A .env file
// in the working directory is loaded into the environment first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values
func defaults() *Config {
	return &Config{
		Port: DefaultPort,
		Artifacts: ArtifactsConfig{
			ScalerPath: DefaultScalerPath,
			ModelPath:  DefaultModelPath,
		},
		Session: SessionConfig{
			CookieName:    DefaultCookieName,
			TTL:           DefaultSessionTTL,
			SweepInterval: DefaultSweepInterval,
		},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q is not a number", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("SCALER_PATH"); v != "" {
		cfg.Artifacts.ScalerPath = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Artifacts.ModelPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SESSION_COOKIE"); v != "" {
		cfg.Session.CookieName = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL %q: %w", v, err)
		}
		cfg.Session.TTL = ttl
	}
	if v := os.Getenv("SESSION_SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SESSION_SECURE_COOKIE %q: %w", v, err)
		}
		cfg.Session.SecureCookie = secure
	}
	return nil
}

// validate checks structural constraints on the parsed configuration
func validate(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d is out of range [1, 65535]", cfg.Port)
	}
	if cfg.Artifacts.ScalerPath == "" {
		return fmt.Errorf("artifacts.scaler_path is required")
	}
	if cfg.Artifacts.ModelPath == "" {
		return fmt.Errorf("artifacts.model_path is required")
	}
	if cfg.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if cfg.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	if cfg.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
