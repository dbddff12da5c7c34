package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const envPrefix = "FABTRACK_"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverFS       = "fs"
	DriverMemory   = "memory"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Transport TransportConfig `yaml:"transport" envPrefix:"TRANSPORT_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Ingest    IngestConfig    `yaml:"ingest" envPrefix:"INGEST_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"MODE"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Token   string `yaml:"token" env:"TOKEN"`
}

// StoreConfig selects the blob store backing the project collection.
type StoreConfig struct {
	Driver   string         `yaml:"driver" env:"DRIVER"`
	Key      string         `yaml:"key" env:"KEY"`
	SQLite   SQLiteConfig   `yaml:"sqlite" envPrefix:"SQLITE_"`
	FS       FSConfig       `yaml:"fs" envPrefix:"FS_"`
	S3       S3Config       `yaml:"s3" envPrefix:"S3_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type FSConfig struct {
	Root string `yaml:"root" env:"ROOT"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" env:"BUCKET"`
	Region          string `yaml:"region" env:"REGION"`
	Prefix          string `yaml:"prefix" env:"PREFIX"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	PathStyle       bool   `yaml:"path_style" env:"PATH_STYLE"`
	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Path enables a rotating log file in addition to stderr.
	Path      string `yaml:"path" env:"PATH"`
	MaxSizeMB int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
}

type IngestConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Key:    "boms",
			SQLite: SQLiteConfig{Path: "fabtrack.db"},
			FS:     FSConfig{Root: "./data"},
			S3:     S3Config{Region: "us-east-1"},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Ingest: IngestConfig{
			MaxUploadBytes: 32 << 20,
		},
	}
}

// Load reads configuration from the YAML file named by FABTRACK_CONFIG_PATH,
// if any, and environment variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(envPrefix + "CONFIG_PATH"))
}

// LoadFrom reads configuration from an optional YAML file at path and then
// applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.Token) == "" {
		return fmt.Errorf("auth enabled but no token configured")
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("store key must not be empty")
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverFS, DriverMemory, DriverPostgres:
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("s3 store requires a bucket")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Ingest.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload bytes %d", c.Ingest.MaxUploadBytes)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
