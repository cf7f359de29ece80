package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/poolwatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
controller_url = "http://192.168.1.50"
username = "admin"
password = "secret"
interval = 30
cache_ttl = 5
database = "/path/to/poolwatch.db"
buffer_capacity = 720
latitude = 33.45
longitude = -112.07
listen = ":9090"
mqtt_enabled = true
mqtt_broker = "tcp://broker.local:1883"
log_level = "debug"
`)
	configPath := filepath.Join(tempDir, "poolwatch.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	// Set environment variable to point to the test config file
	t.Setenv("POOLWATCH_CONFIG", configPath)

	// Load the config
	cfg, err := config.Load()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "http://192.168.1.50", cfg.ControllerURL, "Expected ControllerURL http://192.168.1.50")
	assert.Equal(t, "admin", cfg.Username, "Expected Username admin")
	assert.Equal(t, 30, cfg.Interval, "Expected Interval 30")
	assert.Equal(t, 5, cfg.CacheTTL, "Expected CacheTTL 5")
	assert.Equal(t, "/path/to/poolwatch.db", cfg.Database, "Expected Database /path/to/poolwatch.db")
	assert.Equal(t, 720, cfg.BufferCapacity, "Expected BufferCapacity 720")
	assert.InDelta(t, 33.45, cfg.Latitude, 0.0001, "Expected Latitude 33.45")
	assert.Equal(t, ":9090", cfg.Listen, "Expected Listen :9090")
	assert.True(t, cfg.MQTTEnabled, "Expected MQTTEnabled true")
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker, "Expected MQTTBroker tcp://broker.local:1883")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")

	require.NoError(t, cfg.ValidateRemote())
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("POOLWATCH_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	// Assert default values
	assert.Equal(t, 60, cfg.Interval, "Expected default Interval 60")
	assert.Equal(t, 15, cfg.CacheTTL, "Expected default CacheTTL 15")
	assert.Equal(t, 10, cfg.RequestTimeout, "Expected default RequestTimeout 10")
	assert.Equal(t, 24, cfg.SessionMaxAge, "Expected default SessionMaxAge 24")
	assert.Equal(t, 60, cfg.SweepInterval, "Expected default SweepInterval 60")
	assert.Equal(t, 1440, cfg.BufferCapacity, "Expected default BufferCapacity 1440")
	assert.Equal(t, ":8089", cfg.Listen, "Expected default Listen :8089")
	assert.Equal(t, "poolwatch/telemetry", cfg.MQTTTopic, "Expected default MQTTTopic poolwatch/telemetry")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	// Create a temporary directory for the test
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Create an invalid test config file
	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "poolwatch.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POOLWATCH_CONFIG", configPath)

	_, err = config.Load()
	assert.Error(t, err, "Expected an error for invalid config format")
}

func TestLoadInvalidLogLevel(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
log_level = "noisy"
`)
	configPath := filepath.Join(tempDir, "poolwatch.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POOLWATCH_CONFIG", configPath)

	_, err = config.Load()
	assert.Error(t, err, "Expected an error for invalid log level")
}

func TestLoadInvalidInterval(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configContent := []byte(`
interval = 0
`)
	configPath := filepath.Join(tempDir, "poolwatch.toml")
	err = os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POOLWATCH_CONFIG", configPath)

	_, err = config.Load()
	assert.Error(t, err, "Expected an error for non-positive interval")
}

func TestValidateRemoteRequiresCredentials(t *testing.T) {
	t.Setenv("POOLWATCH_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	// No controller settings supplied, so the remote check must fail even
	// though the config itself loaded fine.
	assert.Error(t, cfg.ValidateRemote())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("POOLWATCH_CONFIG", "")
	t.Setenv("POOLWATCH_CONTROLLER_URL", "http://10.0.0.2")
	t.Setenv("POOLWATCH_USERNAME", "admin")
	t.Setenv("POOLWATCH_PASSWORD", "hunter2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2", cfg.ControllerURL)
	require.NoError(t, cfg.ValidateRemote())
}
