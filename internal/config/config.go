// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Import      ImportConfig
	Brand       BrandConfig
	Search      SearchConfig
	Aggregation AggregationConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds the base directory for everything written to disk.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins (default: *)
}

// DatabaseConfig selects and configures the entity store.
type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	Path     string // SQLite file (default: {data}/cards.db)
	URL      string // Postgres connection string
	MaxConns int    // Postgres pool size (default: 10)
}

// ImportConfig holds checklist import configuration.
type ImportConfig struct {
	// InboxPath is watched for dropped checklist files. Empty disables the watcher.
	InboxPath string
	// SettleDelay is how long a dropped file must stay unchanged before import.
	SettleDelay time.Duration
	// RatePerMinute and Burst limit API imports per client.
	RatePerMinute int
	Burst         int
}

// BrandConfig holds brand classification configuration.
type BrandConfig struct {
	// RulesPath is an optional TOML file overriding the built-in brand rules.
	RulesPath string
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	IndexPath string // default: {data}/search
}

// AggregationConfig tunes brand aggregation.
type AggregationConfig struct {
	// StatsConcurrency bounds parallel per-set stats queries (default: 8).
	StatsConcurrency int
}

// Flags holds raw command-line values. An empty string means the flag was
// not given and the environment or default applies.
type Flags struct {
	Env              string
	LogLevel         string
	EnvFile          string
	DataPath         string
	Port             string
	ReadTimeout      string
	WriteTimeout     string
	IdleTimeout      string
	CORSOrigins      string
	DBDriver         string
	SQLitePath       string
	DatabaseURL      string
	DBMaxConns       string
	InboxPath        string
	InboxSettle      string
	ImportRate       string
	ImportBurst      string
	BrandRules       string
	SearchIndexPath  string
	StatsConcurrency string
}

// BindFlags registers the configuration flags on fs. The server binary and
// the cardctl root command share the same set.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
	fs.StringVar(&f.DataPath, "data-path", "", "Base path for the database, search index and inbox")

	fs.StringVarP(&f.Port, "port", "p", "", "Server port (default: 8080)")
	fs.StringVar(&f.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 30s)")
	fs.StringVar(&f.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.CORSOrigins, "cors-origins", "", "Comma-separated allowed origins (default: *)")

	fs.StringVar(&f.DBDriver, "db-driver", "", "Database driver: sqlite or postgres (default: sqlite)")
	fs.StringVar(&f.SQLitePath, "db-path", "", "SQLite database file (default: {data}/cards.db)")
	fs.StringVar(&f.DatabaseURL, "database-url", "", "Postgres connection string")
	fs.StringVar(&f.DBMaxConns, "db-max-conns", "", "Postgres pool size (default: 10)")

	fs.StringVar(&f.InboxPath, "inbox", "", "Directory watched for checklist files (default: disabled)")
	fs.StringVar(&f.InboxSettle, "inbox-settle", "", "Quiet period before a dropped file is imported (default: 2s)")
	fs.StringVar(&f.ImportRate, "import-rate", "", "API imports per minute per client (default: 10)")
	fs.StringVar(&f.ImportBurst, "import-burst", "", "API import burst size (default: 3)")

	fs.StringVar(&f.BrandRules, "brand-rules", "", "TOML file overriding brand classification rules")
	fs.StringVar(&f.SearchIndexPath, "search-index", "", "Search index directory (default: {data}/search)")
	fs.StringVar(&f.StatsConcurrency, "stats-concurrency", "", "Parallel set stats queries per aggregation (default: 8)")
	return f
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("trading-cards", pflag.ContinueOnError)
	flags := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return Load(flags)
}

// Load builds the configuration from already parsed flags.
func Load(f *Flags) (*Config, error) {
	if f == nil {
		f = &Flags{EnvFile: ".env"}
	}

	// A missing .env file is not an error. godotenv never overrides
	// variables that are already set.
	if f.EnvFile != "" {
		if err := godotenv.Load(f.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f.EnvFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(f.DataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(f.Port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(f.CORSOrigins, "CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getConfigValue(f.DBDriver, "DB_DRIVER", DriverSQLite)),
			Path:     getConfigValue(f.SQLitePath, "DB_PATH", ""),
			URL:      getConfigValue(f.DatabaseURL, "DATABASE_URL", ""),
			MaxConns: getIntConfigValue(f.DBMaxConns, "DB_MAX_CONNS", 10),
		},
		Import: ImportConfig{
			InboxPath:     getConfigValue(f.InboxPath, "INBOX_PATH", ""),
			RatePerMinute: getIntConfigValue(f.ImportRate, "IMPORT_RATE_PER_MINUTE", 10),
			Burst:         getIntConfigValue(f.ImportBurst, "IMPORT_BURST", 3),
		},
		Brand: BrandConfig{
			RulesPath: getConfigValue(f.BrandRules, "BRAND_RULES_PATH", ""),
		},
		Search: SearchConfig{
			IndexPath: getConfigValue(f.SearchIndexPath, "SEARCH_INDEX_PATH", ""),
		},
		Aggregation: AggregationConfig{
			StatsConcurrency: getIntConfigValue(f.StatsConcurrency, "STATS_CONCURRENCY", 8),
		},
	}

	durations := []struct {
		flag, env, def string
		dst            *time.Duration
	}{
		{f.ReadTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{f.WriteTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{f.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{f.InboxSettle, "INBOX_SETTLE_DELAY", "2s", &cfg.Import.SettleDelay},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("sqlite database path cannot be empty after expansion")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("invalid DB_MAX_CONNS: %d", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.Import.RatePerMinute < 1 || c.Import.Burst < 1 {
		return errors.New("import rate and burst must be positive")
	}

	if c.Aggregation.StatsConcurrency < 1 {
		return fmt.Errorf("invalid STATS_CONCURRENCY: %d", c.Aggregation.StatsConcurrency)
	}

	return nil
}

// expandPaths resolves the data directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "TradingCards"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Data.BasePath = base

	if c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(base, "cards.db")); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	if c.Search.IndexPath, err = expandPath(c.Search.IndexPath, filepath.Join(base, "search")); err != nil {
		return fmt.Errorf("invalid search index path: %w", err)
	}
	if c.Import.InboxPath, err = expandPath(c.Import.InboxPath, ""); err != nil {
		return fmt.Errorf("invalid inbox path: %w", err)
	}
	if c.Brand.RulesPath, err = expandPath(c.Brand.RulesPath, ""); err != nil {
		return fmt.Errorf("invalid brand rules path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, the default is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
