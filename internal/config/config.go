// Package config loads coverband settings from the environment and opens a
// configured Store.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects the storage provider.
type Backend string

const (
	BackendMemory    Backend = "memory"
	BackendBigCache  Backend = "bigcache"
	BackendRistretto Backend = "ristretto"
	BackendRedis     Backend = "redis"
	BackendFile      Backend = "file"
	BackendGCS       Backend = "gcs"
	BackendMinIO     Backend = "minio"
)

// CodecType selects the blob encoding.
type CodecType string

const (
	CodecJSON     CodecType = "json"
	CodecCBOR     CodecType = "cbor"
	CodecMsgpack  CodecType = "msgpack"
	CodecProtobuf CodecType = "protobuf"
)

// LogType selects the logging library behind coverband.Logger.
type LogType string

const (
	LogSlog   LogType = "slog"
	LogZap    LogType = "zap"
	LogLogrus LogType = "logrus"
)

const defaultRedisURL = "redis://localhost:6379/0"

// Config holds everything needed to open a Store.
type Config struct {
	Backend   Backend
	Namespace string
	// TTL applied to every write; 0 means no expiry.
	TTL   time.Duration
	Codec CodecType
	// MaxBlobBytes caps the size of a blob accepted on decode; 0 disables the cap.
	MaxBlobBytes int
	// Root resolves relative source paths when hashing files.
	Root string

	RedisURL string
	FileDir  string

	GCSBucket   string
	GCSPrefix   string
	GCSEndpoint string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOPrefix    string
	MinIOUseSSL    bool

	Log      LogType
	LogLevel string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Backend:   Backend(getEnv("COVERBAND_BACKEND", string(BackendRedis))),
		Namespace: getEnv("COVERBAND_NAMESPACE", ""),
		Codec:     CodecType(getEnv("COVERBAND_CODEC", string(CodecJSON))),
		Root:      getEnv("COVERBAND_ROOT", "."),
		Log:       LogType(getEnv("COVERBAND_LOG", string(LogSlog))),
		LogLevel:  strings.ToLower(getEnv("COVERBAND_LOG_LEVEL", "info")),
	}

	ttl, err := parseTTL(getEnv("COVERBAND_TTL", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid COVERBAND_TTL: %w", err)
	}
	cfg.TTL = ttl

	maxBlob, err := strconv.Atoi(getEnv("COVERBAND_MAX_BLOB_BYTES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid COVERBAND_MAX_BLOB_BYTES: %w", err)
	}
	cfg.MaxBlobBytes = maxBlob

	switch cfg.Backend {
	case BackendRedis:
		cfg.RedisURL = getEnv("COVERBAND_REDIS_URL", getEnv("REDIS_URL", defaultRedisURL))
	case BackendFile:
		cfg.FileDir = getEnv("COVERBAND_FILE_DIR", "tmp/coverband")
	case BackendGCS:
		cfg.GCSBucket = getEnv("COVERBAND_GCS_BUCKET", "")
		cfg.GCSPrefix = getEnv("COVERBAND_GCS_PREFIX", "")
		cfg.GCSEndpoint = getEnv("COVERBAND_GCS_ENDPOINT", "")
	case BackendMinIO:
		cfg.MinIOEndpoint = getEnv("COVERBAND_MINIO_ENDPOINT", "")
		cfg.MinIOAccessKey = getEnv("COVERBAND_MINIO_ACCESS_KEY", "")
		cfg.MinIOSecretKey = getEnv("COVERBAND_MINIO_SECRET_KEY", "")
		cfg.MinIOBucket = getEnv("COVERBAND_MINIO_BUCKET", "coverband")
		cfg.MinIOPrefix = getEnv("COVERBAND_MINIO_PREFIX", "")
		cfg.MinIOUseSSL = getEnv("COVERBAND_MINIO_USE_SSL", "false") == "true"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBigCache, BackendRistretto:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("COVERBAND_REDIS_URL is required for redis backend")
		}
	case BackendFile:
		if c.FileDir == "" {
			return fmt.Errorf("COVERBAND_FILE_DIR is required for file backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("COVERBAND_GCS_BUCKET is required for gcs backend")
		}
	case BackendMinIO:
		if c.MinIOEndpoint == "" {
			return fmt.Errorf("COVERBAND_MINIO_ENDPOINT is required for minio backend")
		}
		if c.MinIOAccessKey == "" {
			return fmt.Errorf("COVERBAND_MINIO_ACCESS_KEY is required for minio backend")
		}
		if c.MinIOSecretKey == "" {
			return fmt.Errorf("COVERBAND_MINIO_SECRET_KEY is required for minio backend")
		}
	default:
		return fmt.Errorf("invalid backend: %s", c.Backend)
	}

	switch c.Codec {
	case CodecJSON, CodecCBOR, CodecMsgpack, CodecProtobuf:
	default:
		return fmt.Errorf("invalid codec: %s", c.Codec)
	}

	switch c.Log {
	case LogSlog, LogZap, LogLogrus:
	default:
		return fmt.Errorf("invalid log type: %s", c.Log)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}
	if c.MaxBlobBytes < 0 {
		return fmt.Errorf("max blob bytes must not be negative")
	}
	return nil
}

// parseTTL accepts a Go duration ("12h") or whole seconds ("3600").
// Empty means no expiry.
func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
