package config

import (
	"os"
	"path/filepath"
	"testing"

	"echohole/internal/identity"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		DBDriver:            "sqlite",
		RateLimitStore:      "memory",
		IPSalt:              "a-private-salt",
		AdminUsername:       "admin",
		AdminPassword:       "s3cret-pass",
		AdminSessionHours:   24,
		SubmitLimit:         5,
		SubmitWindowSeconds: 3600,
		ActionLimit:         60,
		ActionWindowSeconds: 60,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid Development", func(*Config) {}, false},
		{"Missing Port", func(c *Config) { c.Port = "" }, true},
		{"Unknown Driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Redis Store Without URL", func(c *Config) { c.RateLimitStore = "redis" }, true},
		{"Redis Store With URL", func(c *Config) { c.RateLimitStore = "redis"; c.RedisURL = "localhost:6379" }, false},
		{"Zero Submit Limit", func(c *Config) { c.SubmitLimit = 0 }, true},
		{"Zero Session Hours", func(c *Config) { c.AdminSessionHours = 0 }, true},
		{"No Admin Credentials", func(c *Config) { c.AdminPassword = "" }, true},
		{"Default Salt In Development", func(c *Config) { c.IPSalt = identity.DefaultSalt }, false},
		{"Default Salt In Production", func(c *Config) { c.Env = "production"; c.IPSalt = identity.DefaultSalt }, true},
		{"Default Password In Production", func(c *Config) { c.Env = "prod"; c.AdminPassword = DefaultAdminPassword }, true},
		{"Hash Overrides Default Password In Production", func(c *Config) {
			c.Env = "production"
			c.AdminPassword = DefaultAdminPassword
			c.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
		}, false},
		{"Postgres Without SSL In Production", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "postgres"
			c.DBSSLMode = "disable"
		}, true},
		{"Postgres With SSL In Production", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "postgres"
			c.DBSSLMode = "require"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("SUBMIT_LIMIT", "7")
	t.Setenv("DB_DRIVER", "  SQLITE ")
	t.Setenv("REQUIRE_PRE_APPROVAL", "true")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7, c.SubmitLimit)
	assert.Equal(t, 3600, c.SubmitWindowSeconds)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "memory", c.RateLimitStore)
	assert.True(t, c.RequirePreApproval)
	assert.Equal(t, 24, c.AdminSessionHours)
}

func TestConfig_Phrases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrases.yml")
	require.NoError(t, os.WriteFile(path, []byte("phrases:\n  - spam\n  - scam\n"), 0o600))

	c := &Config{BannedPhrases: "暴力, ,黑产", PhrasesFile: path}
	phrases, err := c.Phrases()
	require.NoError(t, err)
	assert.Equal(t, []string{"暴力", "黑产", "spam", "scam"}, phrases)
}

func TestConfig_PhrasesMissingFile(t *testing.T) {
	c := &Config{PhrasesFile: filepath.Join(t.TempDir(), "missing.yml")}
	_, err := c.Phrases()
	assert.Error(t, err)
}

func TestConfig_PhrasesDefaultsOnly(t *testing.T) {
	c := &Config{}
	phrases, err := c.Phrases()
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestConfig_TrustedProxyList(t *testing.T) {
	c := validConfig()
	assert.Empty(t, c.TrustedProxyList())

	c.TrustedProxies = " 10.0.0.1, ,192.168.0.0/16 "
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, c.TrustedProxyList())
}
