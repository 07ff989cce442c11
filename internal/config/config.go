package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port            int
	AppEnv          string
	CORSAllowOrigin string
	AppName         string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string

	// External collaborators
	FinnhubKey        string
	QuoteRateLimit    float64
	QuoteRateBurst    int
	IdentityJWTSecret string
	WebhookURL        string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envInt("PORT", 5001),
		AppEnv:          envStr("APP_ENV", "development"),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),
		AppName:         envStr("APP_NAME", "AlphaTracker"),

		DatabaseURL: envStr("DATABASE_URL", ""),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envInt("DB_PORT", 5432),
		DBName:      envStr("DB_NAME", "alphatracker"),
		DBUser:      envStr("DB_USER", ""),
		DBPassword:  envStr("DB_PASSWORD", ""),

		FinnhubKey:        envStr("FINNHUB_KEY", ""),
		QuoteRateLimit:    envFloat("QUOTE_RATE_LIMIT", 0.5),
		QuoteRateBurst:    envInt("QUOTE_RATE_BURST", 5),
		IdentityJWTSecret: envStr("IDENTITY_JWT_SECRET", ""),
		WebhookURL:        envStr("WEBHOOK_URL", ""),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" && c.DBUser == "" {
		errs = append(errs, "DATABASE_URL or DB_USER is required")
	}
	if c.FinnhubKey == "" {
		fmt.Println("[WARN] FINNHUB_KEY not set — price lookups will fail upstream")
	}
	if c.IdentityJWTSecret == "" {
		fmt.Println("[WARN] IDENTITY_JWT_SECRET not set — user_id is trusted from request parameters")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set — trade-logged notifications disabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== AlphaTracker API Configuration ===")
	fmt.Printf("Environment: %s\n", c.AppEnv)
	fmt.Printf("Listen port: %d\n", c.Port)
	if c.DatabaseURL != "" {
		fmt.Println("Database: DATABASE_URL")
	} else {
		fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	}
	fmt.Printf("Store TLS: %s\n", boolLabel(c.Production(), "required", "disabled"))
	fmt.Printf("Quote API: %s\n", boolLabel(c.FinnhubKey != "", "configured", "not set"))
	fmt.Printf("Identity tokens: %s\n", boolLabel(c.IdentityJWTSecret != "", "verified", "not enforced"))
	fmt.Printf("Notifications: %s\n", boolLabel(c.WebhookURL != "", "enabled", "disabled"))
	fmt.Println("======================================")
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// DSN builds the store connection string. An explicit DATABASE_URL wins over
// the discrete DB_* components; TLS enforcement is keyed off the production
// mode flag.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	sslmode := "disable"
	if c.Production() {
		sslmode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, sslmode)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
