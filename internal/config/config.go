package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT,default=8585"`
	DBDriver        string        `env:"DB_DRIVER,default=sqlite"`
	DatabaseURL     string        `env:"DATABASE_URL,default=./dreamcrest.db"`
	BaseURL         string        `env:"BASE_URL,default=http://localhost:8585"`
	UploadDir       string        `env:"UPLOAD_DIR,default=./uploads"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
	CookieSecure    bool          `env:"COOKIE_SECURE,default=false"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	CacheTTL        time.Duration `env:"CACHE_TTL,default=1m"`
	SitemapSchedule string        `env:"SITEMAP_SCHEDULE,default=@every 1h"`
	WhatsAppNumber  string        `env:"WHATSAPP_NUMBER"`

	RawCSRFKey    string `env:"CSRF_KEY"`
	RawSessionKey string `env:"SESSION_KEY"`

	CSRFKey    []byte
	SessionKey []byte
}

// LoadConfig reads .env files when present, then the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env file is normal outside development.
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.CSRFKey = decodeKey("CSRF_KEY", cfg.RawCSRFKey)
	cfg.SessionKey = decodeKey("SESSION_KEY", cfg.RawSessionKey)
	cfg.RawCSRFKey, cfg.RawSessionKey = "", ""

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", cfg.Port)
		cfg.Port = "8585"
	}

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// decodeKey returns the base64 key in raw, or a random key when it is unset
// or shorter than 32 bytes.
func decodeKey(name, raw string) []byte {
	if raw == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return key
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		// Only reached when the OS entropy source fails.
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
