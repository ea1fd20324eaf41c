// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL  string
	ListenAddr  string
	DBPath      string
	SyncDBPath  string
	SecretKey   []byte
	HTTPTimeout time.Duration
	LogLevel    slog.Level
}

// EncryptsCredentials reports whether the synchronized credential tier is
// stored encrypted.
func (c *Config) EncryptsCredentials() bool {
	return len(c.SecretKey) > 0
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional: JOBMATCH_API_BASE_URL (https://atstrugglebuster.com),
// JOBMATCH_LISTEN_ADDR (127.0.0.1:8787), JOBMATCH_DB_PATH (jobmatch.db),
// JOBMATCH_SYNC_DB_PATH (jobmatch-sync.db), JOBMATCH_HTTP_TIMEOUT (30s),
// JOBMATCH_LOG_LEVEL (info). JOBMATCH_SECRET_KEY, when set, must be 64 hex
// characters and turns on encryption of the credential tier.
func Load() (*Config, error) {
	baseURL := "https://atstrugglebuster.com"
	if v, ok := os.LookupEnv("JOBMATCH_API_BASE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("JOBMATCH_API_BASE_URL must be an absolute URL, got %q", v)
		}
		baseURL = strings.TrimRight(v, "/")
	}

	listenAddr := "127.0.0.1:8787"
	if v, ok := os.LookupEnv("JOBMATCH_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "jobmatch.db"
	if v, ok := os.LookupEnv("JOBMATCH_DB_PATH"); ok {
		dbPath = v
	}

	syncDBPath := "jobmatch-sync.db"
	if v, ok := os.LookupEnv("JOBMATCH_SYNC_DB_PATH"); ok {
		syncDBPath = v
	}
	if syncDBPath == dbPath {
		return nil, fmt.Errorf("JOBMATCH_SYNC_DB_PATH must differ from JOBMATCH_DB_PATH (%q)", dbPath)
	}

	httpTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("JOBMATCH_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("JOBMATCH_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("JOBMATCH_HTTP_TIMEOUT must be positive, got %s", parsed)
		}
		httpTimeout = parsed
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("JOBMATCH_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("JOBMATCH_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("JOBMATCH_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("JOBMATCH_SECRET_KEY must be hex-encoded: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("JOBMATCH_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		secretKey = key
	}

	return &Config{
		APIBaseURL:  baseURL,
		ListenAddr:  listenAddr,
		DBPath:      dbPath,
		SyncDBPath:  syncDBPath,
		SecretKey:   secretKey,
		HTTPTimeout: httpTimeout,
		LogLevel:    logLevel,
	}, nil
}
