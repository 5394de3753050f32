// Package config handles loading and parsing application configuration.
//
// Values come from, in increasing priority:
//  1. env-default:"..." tags below
//  2. a YAML file, located by CONFIG_PATH=/path/to/config.yaml or
//     --config=/path/to/config.yaml (optional)
//  3. environment variables, including those preloaded from a .env file
//     in the working directory
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage Storage `yaml:"storage"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`

	Workers Workers `yaml:"workers"`
	Auth    Auth    `yaml:"auth"`
}

// Storage selects the record store.
type Storage struct {
	// Backend is "file" (one JSON document) or "sql" (database/sql).
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`

	// Driver and DSN are used by the sql backend: "sqlite3" with a file
	// path, or "pgx" with a postgres:// URL.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite3"`
	DSN    string `yaml:"dsn"    env:"STORAGE_DSN"    env-default:"storage/students.db"`

	// FilePath is the JSON document of the file backend. The sql backend
	// falls back to it when the database cannot be opened.
	FilePath string `yaml:"file_path" env:"STORAGE_FILE_PATH" env-default:"storage/students.json"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR"      env-default:"localhost:8082"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Workers sizes the background pool of the student service.
type Workers struct {
	Size          int           `yaml:"size"           env:"WORKERS_SIZE"           env-default:"3"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace" env:"WORKERS_SHUTDOWN_GRACE" env-default:"5s"`
}

// Auth configures accounts.
type Auth struct {
	// Required puts HTTP Basic auth in front of every mutating route.
	Required bool `yaml:"required" env:"AUTH_REQUIRED" env-default:"false"`

	// The admin account created at startup when it does not exist yet.
	// No account is created while AdminPassword is empty.
	AdminUsername string `yaml:"admin_username" env:"AUTH_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" env:"AUTH_ADMIN_PASSWORD"`
}

// Load builds the configuration from the YAML file at path (skipped when
// path is empty) and the environment, after preloading ./.env if present.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	} else {
		// A clear message beats a cryptic "open: no such file" later.
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports the variables of a .env file without overriding
// ones already set. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "staging", "prod":
	default:
		return fmt.Errorf("config: env must be dev, staging or prod, got %q", c.Env)
	}

	switch c.Storage.Backend {
	case BackendFile:
	case BackendSQL:
		if c.Storage.Driver != "sqlite3" && c.Storage.Driver != "pgx" {
			return fmt.Errorf("config: storage.driver must be sqlite3 or pgx, got %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: storage.backend must be file or sql, got %q", c.Storage.Backend)
	}

	if c.Storage.FilePath == "" {
		return errors.New("config: storage.file_path must not be empty")
	}
	if c.Workers.Size <= 0 {
		return fmt.Errorf("config: workers.size must be positive, got %d", c.Workers.Size)
	}
	return nil
}

// envConfigPath returns CONFIG_PATH after preloading the dotenv file, so
// a .env line can point at the YAML file.
func envConfigPath(dotenv string) (string, error) {
	if err := loadDotEnv(dotenv); err != nil {
		return "", err
	}
	return os.Getenv("CONFIG_PATH"), nil
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. Callers do not need to
// check a returned error. If this function returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable (possibly set by .env) ────────
	configPath, err := envConfigPath(".env")
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/student-management --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}
