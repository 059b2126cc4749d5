package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3Client is the slice of the S3 API the manager needs, kept as an
// interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds the S3-compatible destination for encrypted snapshots.
type Config struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
	DBPath     string
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status reports the manager's last activity.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	LastKey    string     `json:"lastKey,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager produces encrypted database snapshots and ships them to S3.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	db     *sql.DB
	client s3Client
	logger *slog.Logger
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger,
		status: Status{State: StateDisabled},
	}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// RunNow snapshots the database with VACUUM INTO, encrypts the snapshot,
// and uploads it. Transient upload failures retry with fibonacci backoff.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return "", fmt.Errorf("backup not configured")
	}
	if m.status.State == StateRunning {
		m.mu.Unlock()
		return "", fmt.Errorf("backup already in progress")
	}
	m.status.State = StateRunning
	client := m.client
	cfg := m.cfg
	m.mu.Unlock()

	key, err := m.runBackup(ctx, client, cfg)

	m.mu.Lock()
	if err != nil {
		m.status.State = StateError
		m.status.Error = err.Error()
	} else {
		now := time.Now()
		m.status = Status{State: StateIdle, LastBackup: &now, LastKey: key}
	}
	m.mu.Unlock()

	return key, err
}

func (m *Manager) runBackup(ctx context.Context, client s3Client, cfg Config) (string, error) {
	tmpDir, err := os.MkdirTemp("", "apex-backup-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}

	sealed, err := Encrypt(plaintext, cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("apex/%s.db.enc", time.Now().UTC().Format("2006-01-02T15-04-05Z"))

	backoff := retry.WithMaxRetries(4, retry.NewFibonacci(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(sealed),
		})
		if err != nil {
			m.logger.Warn("backup upload failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

// Fetch downloads and decrypts a snapshot by object key. The caller
// decides what to do with the plaintext database image.
func (m *Manager) Fetch(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return nil, fmt.Errorf("backup not configured")
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}

	return Decrypt(sealed, cfg.Passphrase)
}
