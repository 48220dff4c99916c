package config

import (
	"fmt"
	"log"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type R2 struct {
	AccountID  string `long:"r2-account-id" env:"R2_ACCOUNT_ID" description:"Cloudflare account id"`
	AccessKey  string `long:"r2-access-key" env:"R2_ACCESS_KEY" description:"R2 access key"`
	SecretKey  string `long:"r2-secret-key" env:"R2_SECRET_KEY" description:"R2 secret key"`
	BucketName string `long:"r2-bucket" env:"R2_BUCKET_NAME" description:"R2 bucket for mirrored media"`
	PublicURL  string `long:"r2-public-url" env:"R2_PUBLIC_URL" description:"Public base URL of the bucket"`
}

type Config struct {
	Port        string `long:"port" env:"PORT" default:"3000" description:"HTTP listen port"`
	PostgresURI string `long:"postgres-uri" env:"POSTGRES_URI" description:"Postgres connection string"`
	RedisURI    string `long:"redis-uri" env:"REDIS_URI" default:"localhost:6379" description:"Redis address for the publish queue"`
	FrontendURL string `long:"frontend-url" env:"FRONTEND_URL" default:"http://localhost:5173" description:"Allowed CORS origin"`
	SecretKey   string `long:"secret-key" env:"SECRET_KEY" description:"32 byte key for token encryption and JWT signing"`
	CookieName  string `long:"cookie-name" env:"COOKIE_NAME" default:"contentflow_session" description:"Session cookie name"`
	LogLevel    string `long:"log-level" env:"LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`

	GoogleClientID     string `long:"google-client-id" env:"GOOGLE_CLIENT_ID" description:"Google OAuth client id"`
	GoogleClientSecret string `long:"google-client-secret" env:"GOOGLE_CLIENT_SECRET" description:"Google OAuth client secret"`
	TokenRefreshSpec   string `long:"token-refresh-spec" env:"TOKEN_REFRESH_SPEC" default:"@every 00h10m00s" description:"Cron spec for Google token refresh"`

	MetaGraphURL   string        `long:"meta-graph-url" env:"META_GRAPH_URL" default:"https://graph.facebook.com/v21.0" description:"Meta Graph API base URL"`
	IGPollInterval time.Duration `long:"ig-poll-interval" env:"IG_POLL_INTERVAL" default:"3s" description:"Delay between Instagram container status checks"`
	IGPollAttempts int           `long:"ig-poll-attempts" env:"IG_POLL_ATTEMPTS" default:"20" description:"Instagram container status checks before giving up"`
	HTTPTimeout    time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30s" description:"Timeout for outbound platform requests"`
	MediaMaxBytes  int64         `long:"media-max-bytes" env:"MEDIA_MAX_BYTES" default:"26214400" description:"Largest media file mirrored from a URL"`

	R2 R2 `group:"r2"`
}

// LoadConfig reads .env when present, then environment variables and flags.
// It returns nil, nil when help was requested.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load .env file", err)
	}

	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresURI == "" {
		return fmt.Errorf("POSTGRES_URI is required")
	}
	if len(c.SecretKey) != 32 {
		return fmt.Errorf("SECRET_KEY must be 32 bytes, got %d", len(c.SecretKey))
	}
	if c.IGPollAttempts < 1 {
		return fmt.Errorf("IG_POLL_ATTEMPTS must be at least 1")
	}
	if c.IGPollInterval < 0 {
		return fmt.Errorf("IG_POLL_INTERVAL must not be negative")
	}
	return nil
}
