// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"echohole/internal/identity"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAdminPassword is the development admin password. Production config rejects it.
const DefaultAdminPassword = "change-me"

// DefaultBannedPhrases seeds the content filter when nothing is configured.
var DefaultBannedPhrases = []string{"暴力", "恐怖", "黄赌毒", "黑产", "人身攻击"}

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	StaticDir      string `mapstructure:"STATIC_DIR"`
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBPath     string `mapstructure:"DB_PATH"`

	RedisURL string `mapstructure:"REDIS_URL"`

	IPSalt string `mapstructure:"IP_SALT"`

	AdminUsername     string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminSessionHours int    `mapstructure:"ADMIN_SESSION_HOURS"`

	SubmitLimit         int    `mapstructure:"SUBMIT_LIMIT"`
	SubmitWindowSeconds int    `mapstructure:"SUBMIT_WINDOW_SECONDS"`
	ActionLimit         int    `mapstructure:"ACTION_LIMIT"`
	ActionWindowSeconds int    `mapstructure:"ACTION_WINDOW_SECONDS"`
	RateLimitStore      string `mapstructure:"RATE_LIMIT_STORE"`

	BannedPhrases      string `mapstructure:"BANNED_PHRASES"`
	PhrasesFile        string `mapstructure:"PHRASES_FILE"`
	RequirePreApproval bool   `mapstructure:"REQUIRE_PRE_APPROVAL"`

	SessionCleanupMinutes int `mapstructure:"SESSION_CLEANUP_MINUTES"`
	RateLimitSweepMinutes int `mapstructure:"RATE_LIMIT_SWEEP_MINUTES"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingEndpoint     string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("STATIC_DIR", "public")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "echohole")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "echohole")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", "echohole.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("IP_SALT", identity.DefaultSalt)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("ADMIN_SESSION_HOURS", 24)
	viper.SetDefault("SUBMIT_LIMIT", 5)
	viper.SetDefault("SUBMIT_WINDOW_SECONDS", 3600)
	viper.SetDefault("ACTION_LIMIT", 60)
	viper.SetDefault("ACTION_WINDOW_SECONDS", 60)
	viper.SetDefault("RATE_LIMIT_STORE", "memory")
	viper.SetDefault("BANNED_PHRASES", strings.Join(DefaultBannedPhrases, ","))
	viper.SetDefault("PHRASES_FILE", "")
	viper.SetDefault("REQUIRE_PRE_APPROVAL", false)
	viper.SetDefault("SESSION_CLEANUP_MINUTES", 10)
	viper.SetDefault("RATE_LIMIT_SWEEP_MINUTES", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.RateLimitStore = strings.ToLower(strings.TrimSpace(c.RateLimitStore))
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.RateLimitStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("RATE_LIMIT_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be memory or redis, got %q", c.RateLimitStore)
	}
	if c.SubmitLimit <= 0 || c.SubmitWindowSeconds <= 0 {
		return errors.New("SUBMIT_LIMIT and SUBMIT_WINDOW_SECONDS must be positive")
	}
	if c.ActionLimit <= 0 || c.ActionWindowSeconds <= 0 {
		return errors.New("ACTION_LIMIT and ACTION_WINDOW_SECONDS must be positive")
	}
	if c.AdminSessionHours <= 0 {
		return errors.New("ADMIN_SESSION_HOURS must be positive")
	}
	if c.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}

	if c.IsProduction() {
		if c.IPSalt == "" || c.IPSalt == identity.DefaultSalt {
			return errors.New("IP_SALT must be changed from the default value in production")
		}
		if c.AdminPasswordHash == "" && c.AdminPassword == DefaultAdminPassword {
			return errors.New("ADMIN_PASSWORD must be changed from the default value in production")
		}
		if c.DBDriver == "postgres" && (c.DBSSLMode == "disable" || c.DBSSLMode == "") {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if c.IPSalt == identity.DefaultSalt {
		log.Println("WARNING: IP_SALT is the default value. Set a private salt before deploying.")
	}

	return nil
}

// TrustedProxyList returns the TRUSTED_PROXIES entries (IPs or CIDR ranges).
func (c *Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type phraseFile struct {
	Phrases []string `yaml:"phrases"`
}

// Phrases returns the content filter phrase list: BANNED_PHRASES entries
// followed by any entries from PHRASES_FILE.
func (c *Config) Phrases() ([]string, error) {
	var out []string
	for _, p := range strings.Split(c.BannedPhrases, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	if c.PhrasesFile == "" {
		return out, nil
	}
	raw, err := os.ReadFile(c.PhrasesFile)
	if err != nil {
		return nil, fmt.Errorf("read phrases file: %w", err)
	}
	var pf phraseFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse phrases file %s: %w", c.PhrasesFile, err)
	}
	return append(out, pf.Phrases...), nil
}
