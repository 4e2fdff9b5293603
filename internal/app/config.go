package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/mrytune/internal/adapter/fetch"
	"github.com/tejashwikalptaru/mrytune/internal/logger"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvBlobBackend  = "MRYTUNE_BLOB_BACKEND"
	EnvBlobDir      = "MRYTUNE_BLOB_DIR"
	EnvRedisURL     = "MRYTUNE_REDIS_URL"
	EnvFetchTimeout = "MRYTUNE_FETCH_TIMEOUT"
	EnvTransport    = "MRYTUNE_TRANSPORT"
)

// Blob Store backends.
const (
	BlobMemory = "memory"
	BlobDisk   = "disk"
	BlobRedis  = "redis"
)

// Transports.
const (
	TransportBeep = "beep"
	TransportMock = "mock"
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier; it also names the preference store
	AppID string

	// AppName is the display name
	AppName string

	// BlobBackend selects the offline cache: memory, disk or redis
	BlobBackend string

	// BlobDir is the disk backend directory
	BlobDir string

	// RedisURL is the redis backend URL (redis://host:port/db)
	RedisURL string

	// FetchTimeout bounds one HTTP attempt
	FetchTimeout time.Duration

	// FetchRetries is the number of extra attempts after a transport error or 5xx
	FetchRetries int

	// Transport selects the audio transport: beep or mock
	Transport string

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is text or json
	LogFormat string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:        "com.mrytune.app",
		AppName:      "mrytune",
		BlobBackend:  BlobDisk,
		BlobDir:      defaultBlobDir(),
		FetchTimeout: fetch.DefaultTimeout,
		FetchRetries: 2,
		Transport:    TransportBeep,
		LogLevel:     loggerCfg.Level,
		LogFormat:    loggerCfg.Format,
	}
}

func defaultBlobDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mrytune", "blobs")
}

// ConfigFromEnv returns DefaultConfig overridden by the MRYTUNE_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvBlobBackend); v != "" {
		cfg.BlobBackend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvBlobDir); v != "" {
		cfg.BlobDir = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}
	if v := os.Getenv(EnvTransport); v != "" {
		cfg.Transport = strings.ToLower(strings.TrimSpace(v))
	}

	return cfg, cfg.Validate()
}

// Validate checks the backend and transport selections.
func (c Config) Validate() error {
	switch c.BlobBackend {
	case BlobMemory:
	case BlobDisk:
		if c.BlobDir == "" {
			return fmt.Errorf("blob backend %q needs a directory", c.BlobBackend)
		}
	case BlobRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("blob backend %q needs %s", c.BlobBackend, EnvRedisURL)
		}
	default:
		return fmt.Errorf("unknown blob backend %q (memory, disk or redis)", c.BlobBackend)
	}

	switch c.Transport {
	case TransportBeep, TransportMock:
	default:
		return fmt.Errorf("unknown transport %q (beep or mock)", c.Transport)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	return nil
}
