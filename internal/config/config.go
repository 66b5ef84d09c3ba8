package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	APIBaseURL   string
	APITimeout   time.Duration
	DBDriver     string
	DBDSN        string
	CSRFKey      []byte
	SessionKey   []byte
	AdminKey     []byte
	CookieDomain string
	CookieSecure bool

	AdminIdleTimeout time.Duration
	RateLimitPerMin  int

	UploadDir     string
	CloudinaryURL string
	ChatWidgetID  string

	ServiceName string
	LogLevel    slog.Level
}

func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file", "error", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8585"),
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		APITimeout:    getDuration("API_TIMEOUT", 10*time.Second),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBDSN:         getEnv("DB_DSN", "./studio.db"),
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		ChatWidgetID:  getEnv("CHAT_WIDGET_ID", ""),
		ServiceName:   getEnv("OTEL_SERVICE_NAME", "studio-web"),

		AdminIdleTimeout: getDuration("ADMIN_IDLE_TIMEOUT", 30*time.Minute),
		RateLimitPerMin:  getInt("RATE_LIMIT_PER_MINUTE", 10),
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "debug")),
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")
	cfg.AdminKey = loadKey("ADMIN_SESSION_KEY")

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		slog.Error("Invalid DB_DRIVER. Falling back to sqlite.", "DB_DRIVER", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	return cfg, nil
}

// loadKey reads a base64 key of at least 32 bytes, or generates a throwaway one.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("Invalid integer, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		// Fallback only prevents a panic at startup; never rely on it in production
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
