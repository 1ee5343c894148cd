package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// DefaultMemoryBucket names the bucket in URLs built by the memory backend
// when AWS_S3_BUCKET_NAME is unset.
const DefaultMemoryBucket = "wardrobe-local"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	MaxUploadMB int
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type StorageConfig struct {
	Backend         string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // empty for AWS, set for S3-compatible stores
	UsePathStyle    bool
	PublicDomain    string // host suffix of public object URLs
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// RateLimitEnabled reports whether a Redis address was configured.
func (c *Config) RateLimitEnabled() bool {
	return c.Redis.Addr != ""
}

// Load reads configuration from the environment. A local .env file, when
// present, is exported into the process environment first so the AWS SDK
// sees the same values.
func Load() (*Config, error) {
	cfg := fromViper(newViper())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that never
// touch object storage.
func LoadDatabase() (DatabaseConfig, error) {
	cfg := fromViper(newViper()).Database
	if cfg.URL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Env:         v.GetString("SERVER_ENV"),
			MaxUploadMB: v.GetInt("MAX_UPLOAD_MB"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(v.GetString("STORAGE_BACKEND")),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Region:          v.GetString("AWS_S3_REGION"),
			Bucket:          v.GetString("AWS_S3_BUCKET_NAME"),
			Endpoint:        v.GetString("AWS_S3_ENDPOINT"),
			UsePathStyle:    v.GetBool("AWS_S3_USE_PATH_STYLE"),
			PublicDomain:    v.GetString("AWS_S3_PUBLIC_DOMAIN"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 15)
	v.SetDefault("DB_MAX_IDLE_CONNS", 8)
	v.SetDefault("STORAGE_BACKEND", StorageS3)
	v.SetDefault("AWS_S3_PUBLIC_DOMAIN", "s3.amazonaws.com")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}

	switch c.Storage.Backend {
	case StorageS3:
		required := map[string]string{
			"AWS_ACCESS_KEY_ID":     c.Storage.AccessKeyID,
			"AWS_SECRET_ACCESS_KEY": c.Storage.SecretAccessKey,
			"AWS_S3_REGION":         c.Storage.Region,
			"AWS_S3_BUCKET_NAME":    c.Storage.Bucket,
		}
		for _, key := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_S3_REGION", "AWS_S3_BUCKET_NAME"} {
			if required[key] == "" {
				errs = append(errs, fmt.Errorf("%s is required for the s3 storage backend", key))
			}
		}
	case StorageMemory:
		// no credentials needed
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if c.RateLimitEnabled() && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW_SECONDS must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
