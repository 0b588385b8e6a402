// Package config resolves runtime settings from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"library-catalog/library"
)

// Environment variables read by Load.
const (
	EnvStoreDriver = "LIBRARY_STORE_DRIVER"
	EnvStorePath   = "LIBRARY_STORE_PATH"
	EnvAuditLog    = "LIBRARY_AUDIT_LOG"
	EnvLogLevel    = "LIBRARY_LOG_LEVEL"
)

const (
	defaultSQLitePath = "library.db"
	defaultJSONPath   = "library-data"
	defaultAuditLog   = "audit.log"
	defaultLogLevel   = "info"
)

type Config struct {
	StoreDriver string
	StorePath   string
	AuditLog    string
	LogLevel    string
}

// Load reads envFile (if it exists) into the environment and builds a Config
// from it. Variables already set in the environment win over the file.
// StorePath stays empty unless set, so callers can still switch drivers
// before calling ApplyDefaults.
func Load(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		StoreDriver: getenv(EnvStoreDriver, library.DriverSQLite),
		StorePath:   os.Getenv(EnvStorePath),
		AuditLog:    getenv(EnvAuditLog, defaultAuditLog),
		LogLevel:    getenv(EnvLogLevel, defaultLogLevel),
	}
	return cfg, nil
}

// ApplyDefaults fills the store path for the selected driver when unset.
func (c *Config) ApplyDefaults() {
	if c.StorePath != "" {
		return
	}
	if c.StoreDriver == library.DriverJSON {
		c.StorePath = defaultJSONPath
	} else {
		c.StorePath = defaultSQLitePath
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case library.DriverSQLite, library.DriverJSON:
	default:
		return fmt.Errorf("unknown store driver %q (want %s or %s)", c.StoreDriver, library.DriverSQLite, library.DriverJSON)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.AuditLog == "" {
		return errors.New("audit log path is empty")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}

// Logger returns a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	lvl, err := c.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Override copies every non-empty field of o over c.
func (c *Config) Override(o Config) {
	if o.StoreDriver != "" {
		c.StoreDriver = o.StoreDriver
	}
	if o.StorePath != "" {
		c.StorePath = o.StorePath
	}
	if o.AuditLog != "" {
		c.AuditLog = o.AuditLog
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Resolve loads envFile, applies the overrides, fills defaults and
// validates the result.
func Resolve(envFile string, overrides Config) (Config, error) {
	cfg, err := Load(envFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Override(overrides)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
