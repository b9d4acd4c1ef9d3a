package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hearthhub/configflow/internal/store"
)

type (
	// Config holds configuration settings for the config-flow service
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Stores
		FlowStore        store.Options
		DefinitionDBPath string

		// Hub proxy
		HubBaseURL string
		HubToken   string
		HubTimeout time.Duration

		// OAuth
		NestAuthURL string

		// Discovery
		DiscoveryTimeout time.Duration

		// Archiving
		Archive ArchiveConfig

		ShutdownTimeout time.Duration
	}

	// ArchiveConfig bounds the terminal-flow archiver
	ArchiveConfig struct {
		Enabled       bool
		BucketURL     string
		CheckInterval time.Duration
		MaxAge        time.Duration
	}
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "configflow"

	DefaultDefinitionDBPath = "configflow.db"

	DefaultHubTimeoutSec       = 30
	DefaultDiscoveryTimeoutSec = 10

	DefaultArchiveIntervalMin = 5
	DefaultArchiveMaxAgeHours = 24
	DefaultShutdownTimeout    = 10 * time.Second

	MaxTimeoutSec         = 24 * 60 * 60
	MaxArchiveIntervalMin = 24 * 60
	MaxArchiveMaxAgeHours = 365 * 24
)

var (
	ErrInvalidAPIPort          = errors.New("invalid API port")
	ErrInvalidHubTimeout       = errors.New("hub timeout must be positive")
	ErrInvalidDiscoveryTimeout = errors.New(
		"discovery timeout must be positive",
	)
	ErrMissingDefinitionDB = errors.New("definition database path is empty")
	ErrMissingBucketURL    = errors.New(
		"archiving enabled without a bucket URL",
	)
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, stores, hub proxy, and archiver
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:  DefaultAPIHost,
		APIPort:  DefaultAPIPort,
		LogLevel: "info",
		FlowStore: store.Options{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
		DefinitionDBPath: DefaultDefinitionDBPath,
		HubBaseURL:       "http://localhost:8123",
		HubTimeout:       DefaultHubTimeoutSec * time.Second,
		NestAuthURL:      "https://nestservices.google.com/partnerconnections",
		DiscoveryTimeout: DefaultDiscoveryTimeoutSec * time.Second,
		Archive: ArchiveConfig{
			Enabled:       false,
			CheckInterval: DefaultArchiveIntervalMin * time.Minute,
			MaxAge:        DefaultArchiveMaxAgeHours * time.Hour,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if dbPath := os.Getenv("DEFINITION_DB_PATH"); dbPath != "" {
		c.DefinitionDBPath = dbPath
	}
	if hubURL := os.Getenv("HUB_BASE_URL"); hubURL != "" {
		c.HubBaseURL = hubURL
	}
	if hubToken := os.Getenv("HUB_TOKEN"); hubToken != "" {
		c.HubToken = hubToken
	}
	if authURL := os.Getenv("NEST_AUTH_URL"); authURL != "" {
		c.NestAuthURL = authURL
	}
	if bucketURL := os.Getenv("ARCHIVE_BUCKET_URL"); bucketURL != "" {
		c.Archive.BucketURL = bucketURL
		c.Archive.Enabled = true
	}

	loadStoreFromEnv(&c.FlowStore)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}

	var hubTimeout int
	if err := loadEnvInt(
		"HUB_TIMEOUT_SECONDS", &hubTimeout, 0, MaxTimeoutSec,
	); err != nil {
		return err
	}
	if hubTimeout > 0 {
		c.HubTimeout = time.Duration(hubTimeout) * time.Second
	}

	var discTimeout int
	if err := loadEnvInt(
		"DISCOVERY_TIMEOUT_SECONDS", &discTimeout, 0, MaxTimeoutSec,
	); err != nil {
		return err
	}
	if discTimeout > 0 {
		c.DiscoveryTimeout = time.Duration(discTimeout) * time.Second
	}

	var interval int
	if err := loadEnvInt(
		"ARCHIVE_INTERVAL_MINUTES", &interval, 0, MaxArchiveIntervalMin,
	); err != nil {
		return err
	}
	if interval > 0 {
		c.Archive.CheckInterval = time.Duration(interval) * time.Minute
	}

	var maxAge int
	if err := loadEnvInt(
		"ARCHIVE_MAX_AGE_HOURS", &maxAge, 0, MaxArchiveMaxAgeHours,
	); err != nil {
		return err
	}
	if maxAge > 0 {
		c.Archive.MaxAge = time.Duration(maxAge) * time.Hour
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.HubTimeout <= 0 {
		return ErrInvalidHubTimeout
	}
	if c.DiscoveryTimeout <= 0 {
		return ErrInvalidDiscoveryTimeout
	}
	if c.DefinitionDBPath == "" {
		return ErrMissingDefinitionDB
	}
	if c.Archive.Enabled && c.Archive.BucketURL == "" {
		return ErrMissingBucketURL
	}
	return nil
}

func loadStoreFromEnv(s *store.Options) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			s.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		s.Prefix = prefix
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
