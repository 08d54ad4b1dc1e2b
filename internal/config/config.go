// Package config loads settings from an optional YAML file, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverOxiDB    = "oxidb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type OxiDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	PoolSize int    `yaml:"pool_size"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	OxiDB    OxiDBConfig    `yaml:"oxidb"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// AssetsConfig lists the directories searched, in order, for renderer
// assets.
type AssetsConfig struct {
	FormioDirs    []string `yaml:"formio_dirs"`
	BootstrapDirs []string `yaml:"bootstrap_dirs"`
	FontDirs      []string `yaml:"font_dirs"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	GelfAddr string `yaml:"gelf_addr"`
}

type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
	Client  ClientConfig  `yaml:"client"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		Store: StoreConfig{
			Driver: DriverOxiDB,
			OxiDB:  OxiDBConfig{Host: "127.0.0.1", Port: 4444, PoolSize: 3},
		},
		Assets: AssetsConfig{
			FormioDirs:    []string{"node_modules/formiojs/dist"},
			BootstrapDirs: []string{"node_modules/bootstrap/dist/css"},
			FontDirs:      []string{"node_modules/@formio/js/dist/fonts", "node_modules/formiojs/dist/fonts"},
		},
		Logging: LoggingConfig{Level: "info"},
		Client:  ClientConfig{BaseURL: "http://localhost:8080"},
	}
}

// Load builds the configuration. An empty path skips the YAML file; a
// missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("OXIFORMS_ADDR", c.Server.Addr)
	c.Server.AllowedOrigins = getEnvList("OXIFORMS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Store.Driver = getEnv("OXIFORMS_STORE", c.Store.Driver)
	c.Store.OxiDB.Host = getEnv("OXIDB_HOST", c.Store.OxiDB.Host)
	c.Store.OxiDB.Port = getEnvInt("OXIDB_PORT", c.Store.OxiDB.Port)
	c.Store.OxiDB.PoolSize = getEnvInt("OXIFORMS_POOL_SIZE", c.Store.OxiDB.PoolSize)
	c.Store.Postgres.DSN = getEnv("DATABASE_URI", c.Store.Postgres.DSN)
	c.Store.Postgres.DSN = getEnv("OXIFORMS_PG_DSN", c.Store.Postgres.DSN)
	c.Assets.FormioDirs = getEnvList("OXIFORMS_FORMIO_DIRS", c.Assets.FormioDirs)
	c.Assets.BootstrapDirs = getEnvList("OXIFORMS_BOOTSTRAP_DIRS", c.Assets.BootstrapDirs)
	c.Assets.FontDirs = getEnvList("OXIFORMS_FONT_DIRS", c.Assets.FontDirs)
	c.Logging.Level = getEnv("OXIFORMS_LOG_LEVEL", c.Logging.Level)
	c.Logging.GelfAddr = getEnv("GELF_ADDR", c.Logging.GelfAddr)
	c.Client.BaseURL = getEnv("OXIFORMS_BASE_URL", c.Client.BaseURL)
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverOxiDB:
		if c.Store.OxiDB.Host == "" || c.Store.OxiDB.Port <= 0 {
			return errors.New("config: store.oxidb host and port are required")
		}
		if c.Store.OxiDB.PoolSize < 1 {
			c.Store.OxiDB.PoolSize = 1
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("config: store.postgres.dsn is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
