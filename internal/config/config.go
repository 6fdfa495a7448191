// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mindvault/internal/storage"
)

// Storage backends.
const (
	BackendFS     = storage.BackendFS
	BackendSQLite = storage.BackendSQLite
	BackendS3     = storage.BackendS3
)

// Storage selects and configures the blob backend.
type Storage struct {
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"fs" validate:"oneof=fs sqlite s3"`
	DataDir        string `env:"DATA_DIR" envDefault:"./data" validate:"required_if=StorageBackend fs"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"./data/vault.db" validate:"required_if=StorageBackend sqlite"`

	S3Bucket    string `env:"S3_BUCKET" validate:"required_if=StorageBackend s3"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY" validate:"required_with=S3AccessKey"`
	S3Prefix    string `env:"S3_PREFIX"`
}

// Options converts the settings for storage.Open.
func (s Storage) Options() storage.Options {
	return storage.Options{
		Backend:      s.StorageBackend,
		DataDir:      s.DataDir,
		DatabasePath: s.DatabasePath,
		S3: storage.S3Config{
			Bucket:    s.S3Bucket,
			Region:    s.S3Region,
			Endpoint:  s.S3Endpoint,
			AccessKey: s.S3AccessKey,
			SecretKey: s.S3SecretKey,
			Prefix:    s.S3Prefix,
		},
	}
}

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string   `env:"TELEGRAM_BOT_TOKEN" validate:"required"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	AllowedUsers     UserList `env:"ALLOWED_USERS"`

	Storage

	MetadataTimeout time.Duration `env:"METADATA_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	// UserAgent overrides the browser-like default of the metadata fetcher.
	UserAgent string `env:"USER_AGENT"`

	BackupSchedule string `env:"BACKUP_SCHEDULE" envDefault:"0 9 * * *" validate:"required,cron"`
	BackupEnabled  bool   `env:"BACKUP_ENABLED" envDefault:"true"`

	// HTTPAddr enables the HTTP surface when set.
	HTTPAddr   string `env:"HTTP_ADDR"`
	CronSecret string `env:"CRON_SECRET"`

	SaveTagger    string `env:"SAVE_TAGGER" envDefault:"simple" validate:"oneof=simple weighted"`
	MessageTagger string `env:"MESSAGE_TAGGER" envDefault:"weighted" validate:"oneof=simple weighted"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadStorage reads only the storage settings, for tools that never talk to
// Telegram.
func LoadStorage() (*Storage, error) {
	_ = godotenv.Load()
	return parseStorage(env.Options{})
}

func parseStorage(opts env.Options) (*Storage, error) {
	st := &Storage{}
	if err := env.Parse(st, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(st); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}
	return st, nil
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// UserList is a comma-separated list of Telegram user IDs.
type UserList []int64

// UnmarshalText parses "1, 2,3". Blank entries are skipped.
func (u *UserList) UnmarshalText(text []byte) error {
	var out UserList
	for _, s := range strings.Split(string(text), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		out = append(out, uid)
	}
	*u = out
	return nil
}
