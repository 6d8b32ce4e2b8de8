package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Raay/internal/utils"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Builder  BuilderConfig  `yaml:"builder"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	SQLitePath    string `yaml:"sqlite_path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

// RedisConfig is optional; an empty Addr keeps drafts in memory.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DraftTTL time.Duration `yaml:"draft_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type BuilderConfig struct {
	DefaultLocale string        `yaml:"default_locale"`
	SessionIdle   time.Duration `yaml:"session_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ShareBaseURL  string        `yaml:"share_base_url"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			SQLitePath: "data/raay.db",
		},
		Redis: RedisConfig{
			DraftTTL: 24 * time.Hour,
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Builder: BuilderConfig{
			DefaultLocale: "en",
			SessionIdle:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load reads path over the built-in defaults, then applies RAAY_* environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.Server.Addr = utils.SafeEnv("RAAY_ADDR", cfg.Server.Addr)
	cfg.Server.LogLevel = utils.SafeEnv("RAAY_LOG_LEVEL", cfg.Server.LogLevel)
	if origins := utils.SafeEnv("RAAY_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	cfg.Database.SQLitePath = utils.SafeEnv("RAAY_SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.MigrationsDir = utils.SafeEnv("RAAY_MIGRATIONS_DIR", cfg.Database.MigrationsDir)
	cfg.Redis.Addr = utils.SafeEnv("RAAY_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = utils.SafeEnv("RAAY_REDIS_PASSWORD", cfg.Redis.Password)
	if v := utils.SafeEnv("RAAY_REDIS_DB", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RAAY_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	cfg.Auth.JWTSecret = utils.SafeEnv("RAAY_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Builder.DefaultLocale = utils.SafeEnv("RAAY_DEFAULT_LOCALE", cfg.Builder.DefaultLocale)
	cfg.Builder.ShareBaseURL = utils.SafeEnv("RAAY_SHARE_BASE_URL", cfg.Builder.ShareBaseURL)

	for key, dst := range map[string]*time.Duration{
		"RAAY_DRAFT_TTL":        &cfg.Redis.DraftTTL,
		"RAAY_SESSION_IDLE":     &cfg.Builder.SessionIdle,
		"RAAY_SHUTDOWN_TIMEOUT": &cfg.Server.ShutdownTimeout,
	} {
		if v := utils.SafeEnv(key, ""); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Builder.DefaultLocale {
	case "en", "ar":
	default:
		return fmt.Errorf("builder.default_locale %q: want en or ar", c.Builder.DefaultLocale)
	}
	if c.Builder.SessionIdle <= 0 {
		return fmt.Errorf("builder.session_idle must be positive")
	}
	if c.Builder.SweepInterval <= 0 {
		c.Builder.SweepInterval = time.Minute
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
