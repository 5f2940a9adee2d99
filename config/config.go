package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed to every component.
// Business logic never reads the process environment directly.
type Config struct {
	Port           string
	PublicBaseURL  string
	AllowedOrigins []string

	MongoURI     string
	DatabaseName string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	SMSGatewayURL string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFrom       string

	GCSBucket           string
	GCSCredentialsFile  string
	MaxUploadSizeMB     int
	AllowedFileExtCSV   string
	AllowedFileMimesCSV string

	AdminEmail        string
	AdminPassword     string
	AdminPhone        string
	AdminBusinessName string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:           envDefault("PORT", "8080"),
		PublicBaseURL:  envDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		AllowedOrigins: splitCSV(os.Getenv("ALLOWED_ORIGINS")),

		MongoURI:     envDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName: envDefault("DATABASE_NAME", "simplex_sales"),

		JWTSecret:  secret,
		AccessTTL:  time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTTL: time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    envDefault("EMAIL_FROM", "no-reply@example.com"),

		SMSGatewayURL: os.Getenv("SMS_GATEWAY_URL"),
		SMSAccountSID: os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:  os.Getenv("SMS_AUTH_TOKEN"),
		SMSFrom:       os.Getenv("SMS_FROM"),

		GCSBucket:           os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile:  os.Getenv("CREDENTIALS_FILE_LOCATION"),
		MaxUploadSizeMB:     envInt("MAX_UPLOAD_SIZE_MB", 5),
		AllowedFileExtCSV:   envDefault("ALLOWED_FILE_EXTENSIONS", ".jpg,.jpeg,.png,.webp"),
		AllowedFileMimesCSV: envDefault("ALLOWED_FILE_MIME_TYPES", "image/jpeg,image/png,image/webp"),

		AdminEmail:        strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPhone:        os.Getenv("ADMIN_PHONE"),
		AdminBusinessName: envDefault("ADMIN_BUSINESS_NAME", "simplex sales"),
	}

	return cfg, nil
}

// EmailConfigured reports whether a real SMTP provider is available.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != ""
}

// SMSConfigured reports whether a real SMS gateway is available.
func (c *Config) SMSConfigured() bool {
	return c.SMSGatewayURL != "" && c.SMSAccountSID != "" && c.SMSAuthToken != "" && c.SMSFrom != ""
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitCSV(raw string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
