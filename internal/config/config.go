package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// AdminSubject is the Auth0 subject of the single administrator. Every
	// write is checked against it.
	AdminSubject string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// S3 Storage
	S3 S3Config

	// Item vocabulary
	Rooms           []string
	Statuses        []string
	InitialStatus   string
	PurchasedStatus string
	CountedStatus   string
	DefaultCurrency string
	CollationLocale string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
	PublicBaseURL   string // Optional: public-read bucket; empty falls back to presigned URLs
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID: getEnv("AUTH0_CLIENT_ID", ""),
		AdminSubject:  getEnv("ADMIN_SUBJECT", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "homelist-images"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Rooms:           getEnvList("ROOMS", "客廳,廚房,電腦房,小房間,主臥室,浴室"),
		Statuses:        getEnvList("ITEM_STATUSES", "want,candidate,purchased,eliminated"),
		InitialStatus:   getEnv("ITEM_INITIAL_STATUS", "want"),
		PurchasedStatus: getEnv("ITEM_PURCHASED_STATUS", "purchased"),
		CountedStatus:   getEnv("ITEM_COUNTED_STATUS", "purchased"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "TWD"),
		CollationLocale: getEnv("COLLATION_LOCALE", "zh-Hant"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.AdminSubject == "" {
		return fmt.Errorf("ADMIN_SUBJECT is required")
	}
	if len(c.Rooms) == 0 {
		return fmt.Errorf("ROOMS must not be empty")
	}
	if len(c.Statuses) == 0 {
		return fmt.Errorf("ITEM_STATUSES must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := strings.Split(getEnv(key, defaultValue), ",")
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
