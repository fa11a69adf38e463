// Package config loads heightcompare's TOML configuration.
//
// Values may reference environment variables as ${VAR}; they are expanded
// before decoding, so secrets can live in the environment or in a .env file
// loaded with [LoadDotEnv]. A missing default config file is not an error:
// [Default] already describes a working local setup with the hosted catalog.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// Catalog backends.
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
	BackendSeed     = "seed"
)

// Cache and board store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// Config is the full configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Supabase SupabaseConfig `toml:"supabase"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Mongo    MongoConfig    `toml:"mongo"`
	Seed     SeedConfig     `toml:"seed"`
	Cache    CacheConfig    `toml:"cache"`
	Boards   BoardsConfig   `toml:"boards"`
	Server   ServerConfig   `toml:"server"`
	Chart    ChartConfig    `toml:"chart"`
}

// LogConfig controls the CLI and server logger.
type LogConfig struct {
	Level string `toml:"level"`
	// File, when set, receives a rotated copy of the log.
	File string `toml:"file"`
}

// CatalogConfig selects the character catalog backend.
type CatalogConfig struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
}

// SupabaseConfig addresses the hosted PostgREST catalog.
type SupabaseConfig struct {
	URL  string  `toml:"url"`
	Key  string  `toml:"key"`
	Rate float64 `toml:"rate"`
}

// SQLiteConfig locates the local catalog mirror.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// MongoConfig addresses a MongoDB catalog.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// SeedConfig locates a YAML seed catalog.
type SeedConfig struct {
	Path string `toml:"path"`
}

// CacheConfig selects the HTTP response and artifact cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	TTL       time.Duration `toml:"ttl"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
}

// BoardsConfig selects where boards are persisted.
type BoardsConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	Token        string        `toml:"token"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// ChartConfig holds chart defaults.
type ChartConfig struct {
	Height    float64 `toml:"height"`
	Watermark string  `toml:"watermark"`
}

// Default returns a configuration that works without a config file.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info"},
		Catalog:  CatalogConfig{Backend: BackendSupabase, TTL: 5 * time.Minute},
		Supabase: SupabaseConfig{Rate: 10},
		SQLite:   SQLiteConfig{Path: "~/.local/share/heightcompare/catalog.db"},
		Mongo:    MongoConfig{URI: "mongodb://localhost:27017", Database: "heightcompare"},
		Seed:     SeedConfig{Path: "characters.yaml"},
		Cache:    CacheConfig{Backend: StoreFile, TTL: 24 * time.Hour, RedisAddr: "localhost:6379"},
		Boards:   BoardsConfig{Backend: StoreFile},
		Server:   ServerConfig{Addr: ":8080", ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second},
		Chart:    ChartConfig{Height: 600, Watermark: "HeightComparison.com"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/heightcompare/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "heightcompare", "config.toml"), nil
}

// Load reads path over the defaults. An empty path reads [DefaultPath] and
// tolerates it being absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, cfg.Validate()
		}
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode expands environment variables in data, decodes it over cfg and
// validates the result.
func Decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	md, err := toml.NewDecoder(bytes.NewReader([]byte(expanded))).Decode(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config validation failed")
	}
	return nil
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.Catalog),
		validation.Field(&c.Supabase),
		validation.Field(&c.Cache),
		validation.Field(&c.Boards),
		validation.Field(&c.Server),
		validation.Field(&c.Chart),
		validation.Field(&c.SQLite, validation.By(func(any) error {
			if c.Catalog.Backend == BackendSQLite && c.SQLite.Path == "" {
				return stderrors.New("path is required for the sqlite backend")
			}
			return nil
		})),
		validation.Field(&c.Mongo, validation.By(func(any) error {
			if c.Catalog.Backend == BackendMongo && (c.Mongo.URI == "" || c.Mongo.Database == "") {
				return stderrors.New("uri and database are required for the mongo backend")
			}
			return nil
		})),
		validation.Field(&c.Seed, validation.By(func(any) error {
			if c.Catalog.Backend == BackendSeed && c.Seed.Path == "" {
				return stderrors.New("path is required for the seed backend")
			}
			return nil
		})),
	)
}

// Validate checks the log section.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate checks the catalog section.
func (c CatalogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSupabase, BackendSQLite, BackendMongo, BackendSeed)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// Validate checks the supabase section. URL and key are checked when the
// client is built, since commands like "scale" never touch the catalog.
func (c SupabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Rate, validation.Min(0.0)),
	)
}

// Validate checks the cache section.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(StoreFile, StoreRedis, StoreMemory, StoreNone)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == StoreRedis, validation.Required)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// Validate checks the boards section.
func (c BoardsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(StoreFile, StoreRedis, StoreMemory)),
	)
}

// Validate checks the server section.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// Validate checks the chart section.
func (c ChartConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Height, validation.Min(0.0), validation.Max(4000.0)),
	)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
