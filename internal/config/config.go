package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageBackendFirebase = "firebase"
	StorageBackendMinio    = "minio"

	minSessionTTL = 5 * time.Minute
	maxSessionTTL = 14 * 24 * time.Hour
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`

	StorageBackend        string `mapstructure:"STORAGE_BACKEND"`
	ListingImagesBucket   string `mapstructure:"LISTING_IMAGES_BUCKET"`
	AvatarsBucket         string `mapstructure:"AVATARS_BUCKET"`
	StoragePublicBaseURL  string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`
	MinioEndpoint         string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey        string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey        string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL           bool   `mapstructure:"MINIO_USE_SSL"`
	MaxUploadBytes        int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	ListingEventsQueue string `mapstructure:"LISTING_EVENTS_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	AllowedEmailDomain string        `mapstructure:"ALLOWED_EMAIL_DOMAIN"`
	EncryptionKey      string        `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded
	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	SessionCookieName  string        `mapstructure:"SESSION_COOKIE_NAME"`
	MetricsEnabled     bool          `mapstructure:"METRICS_ENABLED"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_WEB_API_KEY", "FIREBASE_STORAGE_BUCKET",
	"STORAGE_BACKEND", "LISTING_IMAGES_BUCKET", "AVATARS_BUCKET", "STORAGE_PUBLIC_BASE_URL",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL", "MAX_UPLOAD_BYTES",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"RABBITMQ_URL", "LISTING_EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
	"ALLOWED_EMAIL_DOMAIN", "ENCRYPTION_KEY", "SESSION_TTL", "SESSION_COOKIE_NAME", "METRICS_ENABLED",
}

var appConfig *Config

// LoadConfig loads configuration from the environment, after an optional .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("STORAGE_BACKEND", StorageBackendFirebase)
	v.SetDefault("LISTING_IMAGES_BUCKET", "listing-images")
	v.SetDefault("AVATARS_BUCKET", "avatars")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LISTING_EVENTS_QUEUE", "collex.listing-events")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("ALLOWED_EMAIL_DOMAIN", "iiitdmj.ac.in")
	v.SetDefault("SESSION_TTL", "120h")
	v.SetDefault("SESSION_COOKIE_NAME", "collex_sid")
	v.SetDefault("METRICS_ENABLED", true)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.FirebaseWebAPIKey == "" {
		return errors.New("FIREBASE_WEB_API_KEY is required")
	}
	if c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required")
	}
	if _, err := c.EncryptionKeyBytes(); err != nil {
		return err
	}
	switch c.StorageBackend {
	case StorageBackendFirebase:
	case StorageBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when STORAGE_BACKEND is minio")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageBackendFirebase, StorageBackendMinio, c.StorageBackend)
	}
	if c.ListingImagesBucket == "" || c.AvatarsBucket == "" {
		return errors.New("LISTING_IMAGES_BUCKET and AVATARS_BUCKET must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.SessionTTL < minSessionTTL || c.SessionTTL > maxSessionTTL {
		return fmt.Errorf("SESSION_TTL must be between %s and %s, got %s", minSessionTTL, maxSessionTTL, c.SessionTTL)
	}
	if strings.TrimSpace(c.AllowedEmailDomain) == "" {
		return errors.New("ALLOWED_EMAIL_DOMAIN is required")
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME is required")
	}
	return nil
}

// EncryptionKeyBytes decodes ENCRYPTION_KEY into a 32-byte AES-256 key.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It panics if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
