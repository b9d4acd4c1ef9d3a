package config_test

import (
	"os"
	"testing"
	"time"

	testify "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/configflow/internal/config"
)

func TestConfigValidation(t *testing.T) {
	t.Run("valid_default_config", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		testify.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name          string
		configMod     func(*config.Config)
		errorContains string
	}{
		{
			name: "invalid_api_port_zero",
			configMod: func(c *config.Config) {
				c.APIPort = 0
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_negative",
			configMod: func(c *config.Config) {
				c.APIPort = -1
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_too_high",
			configMod: func(c *config.Config) {
				c.APIPort = 70000
			},
			errorContains: "invalid API port",
		},
		{
			name: "zero_hub_timeout",
			configMod: func(c *config.Config) {
				c.HubTimeout = 0
			},
			errorContains: "hub timeout must be positive",
		},
		{
			name: "zero_discovery_timeout",
			configMod: func(c *config.Config) {
				c.DiscoveryTimeout = 0
			},
			errorContains: "discovery timeout must be positive",
		},
		{
			name: "empty_definition_db_path",
			configMod: func(c *config.Config) {
				c.DefinitionDBPath = ""
			},
			errorContains: "definition database path is empty",
		},
		{
			name: "archiving_without_bucket",
			configMod: func(c *config.Config) {
				c.Archive.Enabled = true
				c.Archive.BucketURL = ""
			},
			errorContains: "archiving enabled without a bucket URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			testify.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()

	testify.Equal(t, config.DefaultAPIPort, cfg.APIPort)
	testify.Equal(t, "0.0.0.0", cfg.APIHost)
	testify.Equal(t, "info", cfg.LogLevel)
	testify.Equal(t, config.DefaultRedisEndpoint, cfg.FlowStore.Addr)
	testify.Equal(t, config.DefaultRedisPrefix, cfg.FlowStore.Prefix)
	testify.Equal(t, config.DefaultDefinitionDBPath, cfg.DefinitionDBPath)
	testify.Equal(t, "http://localhost:8123", cfg.HubBaseURL)
	testify.Equal(t, 30*time.Second, cfg.HubTimeout)
	testify.Equal(t, 10*time.Second, cfg.DiscoveryTimeout)
	testify.False(t, cfg.Archive.Enabled)
	testify.Equal(t, 5*time.Minute, cfg.Archive.CheckInterval)
	testify.Equal(t, 24*time.Hour, cfg.Archive.MaxAge)
	testify.Equal(t, config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestValidateValidEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{
			name:   "min_valid_port",
			modify: func(c *config.Config) { c.APIPort = 1 },
		},
		{
			name:   "max_valid_port",
			modify: func(c *config.Config) { c.APIPort = 65535 },
		},
		{
			name:   "one_nanosecond_hub_timeout",
			modify: func(c *config.Config) { c.HubTimeout = 1 },
		},
		{
			name: "archiving_with_bucket",
			modify: func(c *config.Config) {
				c.Archive.Enabled = true
				c.Archive.BucketURL = "mem://"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			testify.NoError(t, err)
		})
	}
}

func TestConfigLoadFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*testing.T, *config.Config)
	}{
		{
			name: "load_api_port",
			envVars: map[string]string{
				"API_PORT": "9090",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, 9090, c.APIPort)
			},
		},
		{
			name: "load_api_host",
			envVars: map[string]string{
				"API_HOST": "127.0.0.1",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, "127.0.0.1", c.APIHost)
			},
		},
		{
			name: "load_log_level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, "debug", c.LogLevel)
			},
		},
		{
			name: "load_definition_db_path",
			envVars: map[string]string{
				"DEFINITION_DB_PATH": "/var/lib/configflow/defs.db",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t,
					"/var/lib/configflow/defs.db", c.DefinitionDBPath,
				)
			},
		},
		{
			name: "load_hub_base_url",
			envVars: map[string]string{
				"HUB_BASE_URL": "http://hub.example.com:8123",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t,
					"http://hub.example.com:8123", c.HubBaseURL,
				)
			},
		},
		{
			name: "load_hub_token",
			envVars: map[string]string{
				"HUB_TOKEN": "abc123",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, "abc123", c.HubToken)
			},
		},
		{
			name: "load_hub_timeout",
			envVars: map[string]string{
				"HUB_TIMEOUT_SECONDS": "45",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, 45*time.Second, c.HubTimeout)
			},
		},
		{
			name: "load_discovery_timeout",
			envVars: map[string]string{
				"DISCOVERY_TIMEOUT_SECONDS": "20",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, 20*time.Second, c.DiscoveryTimeout)
			},
		},
		{
			name: "bucket_url_enables_archiving",
			envVars: map[string]string{
				"ARCHIVE_BUCKET_URL": "file:///var/archive",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.True(t, c.Archive.Enabled)
				testify.Equal(t, "file:///var/archive", c.Archive.BucketURL)
			},
		},
		{
			name: "load_archive_interval",
			envVars: map[string]string{
				"ARCHIVE_INTERVAL_MINUTES": "15",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, 15*time.Minute, c.Archive.CheckInterval)
			},
		},
		{
			name: "load_archive_max_age",
			envVars: map[string]string{
				"ARCHIVE_MAX_AGE_HOURS": "72",
			},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, 72*time.Hour, c.Archive.MaxAge)
			},
		},
		{
			name:    "no_env_vars",
			envVars: map[string]string{},
			check: func(t *testing.T, c *config.Config) {
				testify.Equal(t, config.DefaultAPIPort, c.APIPort)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				_ = os.Setenv(key, value)
				t.Cleanup(func() { _ = os.Unsetenv(key) })
			}

			cfg := config.NewDefaultConfig()
			require.NoError(t, cfg.LoadFromEnv())
			tt.check(t, cfg)
		})
	}
}

func TestConfigLoadFromEnvRejectsBadInts(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "api_port_not_a_number",
			envVars: map[string]string{
				"API_PORT": "not_a_number",
			},
		},
		{
			name: "api_port_out_of_range",
			envVars: map[string]string{
				"API_PORT": "70000",
			},
		},
		{
			name: "hub_timeout_not_a_number",
			envVars: map[string]string{
				"HUB_TIMEOUT_SECONDS": "soon",
			},
		},
		{
			name: "archive_interval_out_of_range",
			envVars: map[string]string{
				"ARCHIVE_INTERVAL_MINUTES": "100000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				_ = os.Setenv(key, value)
				t.Cleanup(func() { _ = os.Unsetenv(key) })
			}

			cfg := config.NewDefaultConfig()
			testify.Error(t, cfg.LoadFromEnv())
		})
	}
}

func TestStoreLoadFromEnv(t *testing.T) {
	tests := []struct {
		envVars       map[string]string
		name          string
		checkAddr     string
		checkPassword string
		checkPrefix   string
		checkDB       int
	}{
		{
			name: "load_all_fields",
			envVars: map[string]string{
				"REDIS_ADDR":     "redis.example.com:6379",
				"REDIS_PASSWORD": "secret123",
				"REDIS_DB":       "5",
				"REDIS_PREFIX":   "custom-prefix",
			},
			checkAddr:     "redis.example.com:6379",
			checkPassword: "secret123",
			checkDB:       5,
			checkPrefix:   "custom-prefix",
		},
		{
			name: "load_addr_only",
			envVars: map[string]string{
				"REDIS_ADDR": "localhost:9999",
			},
			checkAddr:   "localhost:9999",
			checkPrefix: config.DefaultRedisPrefix,
		},
		{
			name: "invalid_db_ignored",
			envVars: map[string]string{
				"REDIS_DB": "not_a_number",
			},
			checkDB: 0,
		},
		{
			name:      "no_env_vars",
			envVars:   map[string]string{},
			checkAddr: config.DefaultRedisEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				_ = os.Setenv(key, value)
				t.Cleanup(func() { _ = os.Unsetenv(key) })
			}

			cfg := config.NewDefaultConfig()
			require.NoError(t, cfg.LoadFromEnv())

			if tt.checkAddr != "" {
				testify.Equal(t, tt.checkAddr, cfg.FlowStore.Addr)
			}
			if tt.checkPassword != "" {
				testify.Equal(t, tt.checkPassword, cfg.FlowStore.Password)
			}
			if tt.envVars["REDIS_DB"] != "" {
				testify.Equal(t, tt.checkDB, cfg.FlowStore.DB)
			}
			if tt.checkPrefix != "" {
				testify.Equal(t, tt.checkPrefix, cfg.FlowStore.Prefix)
			}
		})
	}
}
