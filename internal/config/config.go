// Package config loads plategen settings from a TOML file.
//
// Config file locations (priority order):
//  1. $PLATEGEN_CONFIG
//  2. ./plategen.toml
//  3. $XDG_CONFIG_HOME/plategen/config.toml
//  4. ~/.config/plategen/config.toml
//
// Command-line flags override file values. A missing file is not an error;
// defaults apply.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/plategen/pkg/errors"
	"github.com/matzehuels/plategen/pkg/pipeline"
	"github.com/matzehuels/plategen/pkg/plate"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the on-disk configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds placement defaults.
type LayoutConfig struct {
	Packer string `toml:"packer"`
	// Seed fixes reagent colours. Zero picks random colours per run.
	Seed uint64 `toml:"seed"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	WellSize float64  `toml:"well_size"`
	Labels   *bool    `toml:"labels"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
	// TTL overrides the lifetime of cached layouts and renders, e.g. "12h".
	TTL           time.Duration `toml:"ttl"`
}

// ServerConfig configures "plategen serve".
type ServerConfig struct {
	Addr          string `toml:"addr"`
	MaxUploadSize int64  `toml:"max_upload_size"`
}

// Defaults.
const (
	DefaultAddr          = "localhost:4567"
	DefaultRedisAddr     = "localhost:6379"
	DefaultMaxUploadSize = 1 << 20
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load finds and loads the config file, or returns defaults if none found.
// The second return value is the path that was read, empty for defaults.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, path, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, path, perrors.New(perrors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Save writes the config as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Layout.Packer == "" {
		c.Layout.Packer = pipeline.DefaultPacker
	}
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = []string{pipeline.FormatSVG}
	}
	if c.Render.WellSize <= 0 {
		c.Render.WellSize = pipeline.DefaultWellSize
	}
	if c.Render.Labels == nil {
		on := true
		c.Render.Labels = &on
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = DefaultMaxUploadSize
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := plate.PackerByName(c.Layout.Packer); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return perrors.New(perrors.ErrCodeInvalidInput,
			"invalid cache backend %q (file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}

// PipelineOptions returns the pipeline options implied by the config.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Packer:   c.Layout.Packer,
		Seed:     c.Layout.Seed,
		Formats:  append([]string(nil), c.Render.Formats...),
		WellSize: c.Render.WellSize,
		NoLabels: c.Render.Labels != nil && !*c.Render.Labels,
	}
}
