package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver      string
	DBConnection  string
	DBAutoMigrate bool

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Payment - Stripe Connect
	StripeSecretKey     string
	StripeWebhookSecret string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string        // Optional: for S3-compatible services
	S3PresignExpiryMedia  time.Duration // Expiry for locked/purchased chat media
	S3PresignExpiryPublic time.Duration // Expiry for public files (avatars)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "tip2talk"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL for payout onboarding redirects
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:      envString("DB_DRIVER", "sqlite"),
		DBConnection:  envString("DB_CONNECTION", "./data/tip2talk.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", true), // disable when migrations run out of band

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Payment (optional in development so chat can run without an account)
		StripeSecretKey:     envString("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: envString("STRIPE_WEBHOOK_SECRET", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for chat media and avatars)
		S3Region:              envRequired("S3_REGION"),
		S3Bucket:              envString("S3_BUCKET", "chat-media"),
		S3AccessKey:           envRequired("S3_ACCESS_KEY"),
		S3SecretKey:           envRequired("S3_SECRET_KEY"),
		S3Endpoint:            envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiryMedia:  envDuration("S3_PRESIGN_EXPIRY_MEDIA", 1*time.Hour),
		S3PresignExpiryPublic: envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour), // 7 days
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production
// deployments.
func validateProduction(cfg *Config) {
	if cfg.StripeSecretKey == "" {
		slog.Error("production deployment requires STRIPE_SECRET_KEY",
			"hint", "set APP_ENV=development for local testing without payments")
		os.Exit(1)
	}
	if cfg.StripeWebhookSecret == "" {
		slog.Error("production deployment requires STRIPE_WEBHOOK_SECRET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets and credentials are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		S3Endpoint: c.S3Endpoint,
	}
}
