// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Port     int    `env:"APEX_PORT" envDefault:"8080"`
	DBPath   string `env:"APEX_DB_PATH" envDefault:"apex.db"`
	LogLevel string `env:"APEX_LOG_LEVEL" envDefault:"info"`

	// MaxStorageBytes caps the total size of stored collections.
	// Zero disables the quota.
	MaxStorageBytes int64 `env:"APEX_MAX_STORAGE_BYTES" envDefault:"5242880"`

	// PollInterval controls how often due reminders are checked.
	PollInterval time.Duration `env:"APEX_POLL_INTERVAL" envDefault:"30s"`

	Backup BackupConfig `envPrefix:"APEX_BACKUP_"`
}

// BackupConfig holds the S3 destination for encrypted snapshots.
// Backups are disabled unless a bucket is configured.
type BackupConfig struct {
	Endpoint   string `env:"ENDPOINT"`
	Bucket     string `env:"BUCKET"`
	Region     string `env:"REGION" envDefault:"auto"`
	AccessKey  string `env:"ACCESS_KEY"`
	SecretKey  string `env:"SECRET_KEY"`
	Passphrase string `env:"PASSPHRASE"`
}

func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Backup.Enabled() && cfg.Backup.Passphrase == "" {
		return nil, fmt.Errorf("backup bucket configured without APEX_BACKUP_PASSPHRASE")
	}
	return cfg, nil
}
