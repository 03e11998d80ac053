// Package config resolves the service options from defaults, an optional
// TOML file, the environment and command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultListenAddress = "0.0.0.0:8080"
	DefaultDatabaseURL   = "sqlite://data/todo.db"
)

// Environment variables.
const (
	EnvConfigFile       = "TODO_CONFIG"
	EnvListenAddress    = "TODO_LISTEN_ADDRESS"
	EnvDatabaseURL      = "TODO_DATABASE_URL"
	EnvDatabaseUser     = "TODO_DATABASE_USER"
	EnvDatabasePassword = "TODO_DATABASE_PASSWORD"
)

// Config holds the recognized options. TOML keys match the option names.
type Config struct {
	ListenAddress    string `toml:"listen_address"`
	DatabaseURL      string `toml:"database_url"`
	DatabaseUser     string `toml:"database_user"`
	DatabasePassword string `toml:"database_password"`
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, the TOML file named by -config or TODO_CONFIG, environment
// variables, then flags that were set explicitly.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	var flagged Config
	configFile := fs.String("config", "", "Path to a TOML config file")
	fs.StringVar(&flagged.ListenAddress, "listen_address", "", "host:port for the HTTP server")
	fs.StringVar(&flagged.DatabaseURL, "database_url", "", "Database connection string")
	fs.StringVar(&flagged.DatabaseUser, "database_user", "", "Database user")
	fs.StringVar(&flagged.DatabasePassword, "database_password", "", "Database password")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	path := *configFile
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen_address":
			cfg.ListenAddress = flagged.ListenAddress
		case "database_url":
			cfg.DatabaseURL = flagged.DatabaseURL
		case "database_user":
			cfg.DatabaseUser = flagged.DatabaseUser
		case "database_password":
			cfg.DatabasePassword = flagged.DatabasePassword
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the options the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddress) == "" {
		errs = append(errs, errors.New("listen_address must not be empty"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database_url must not be empty"))
	}
	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	cfg.ListenAddress = DefaultListenAddress
	cfg.DatabaseURL = DefaultDatabaseURL
}

func loadFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	cfg.ListenAddress = envOrDefault(EnvListenAddress, cfg.ListenAddress)
	cfg.DatabaseURL = envOrDefault(EnvDatabaseURL, cfg.DatabaseURL)
	cfg.DatabaseUser = envOrDefault(EnvDatabaseUser, cfg.DatabaseUser)
	cfg.DatabasePassword = envOrDefault(EnvDatabasePassword, cfg.DatabasePassword)
}

// envOrDefault returns the environment variable value or fallback when it is empty.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
