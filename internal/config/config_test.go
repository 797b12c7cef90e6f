package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:         AppConfig{Environment: "development"},
		Logger:      LoggerConfig{Level: "info"},
		Data:        DataConfig{BasePath: "/data"},
		Database:    DatabaseConfig{Driver: DriverSQLite, Path: "/data/cards.db", MaxConns: 10},
		Import:      ImportConfig{RatePerMinute: 10, Burst: 3},
		Aggregation: AggregationConfig{StatsConcurrency: 8},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Database(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Driver = DriverPostgres
		assert.Error(t, cfg.Validate())

		cfg.Database.URL = "postgres://localhost/cards"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})
}

func TestValidate_Limits(t *testing.T) {
	cfg := validConfig()
	cfg.Aggregation.StatsConcurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Import.Burst = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_PATH", dataDir)

	cfg, err := LoadConfig([]string{"--env-file", filepath.Join(dataDir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dataDir, "cards.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dataDir, "search"), cfg.Search.IndexPath)
	assert.Empty(t, cfg.Import.InboxPath)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 8, cfg.Aggregation.StatsConcurrency)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dataDir := t.TempDir()
	envFile := filepath.Join(dataDir, "test.env")
	content := "SERVER_PORT=7000\nLOG_LEVEL=debug\nIMPORT_BURST=9\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("DATA_PATH", dataDir)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{"--env-file", envFile, "-p", "9090", "--cors-origins", "http://a.test, http://b.test"})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port, "flag beats .env")
	assert.Equal(t, "warn", cfg.Logger.Level, "environment beats .env")
	assert.Equal(t, 9, cfg.Import.Burst, ".env beats default")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)

	// godotenv sets process variables; clear the ones t.Setenv does not own.
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("IMPORT_BURST")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	_, err := LoadConfig([]string{"--env-file", "", "--read-timeout", "soon"})
	require.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/cards", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cards"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "nope")

	assert.Equal(t, 5, getIntConfigValue("", "TEST_INT_KEY", 5))
	assert.Equal(t, 7, getIntConfigValue("7", "TEST_INT_KEY", 5))
}
