// ============================================================================
// idoutils - IDO data-out utilities
// ============================================================================
//
// Package:     config
// Description: Typed configuration loaded from TOML or YAML files
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/foundation/utils/timex"
)

// EnvConfigPath names the environment variable that points at the config file
const EnvConfigPath = "IDOUTILS_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Buffer  BufferConfig  `toml:"buffer" yaml:"buffer"`
	Move    MoveConfig    `toml:"move" yaml:"move"`
	Spool   SpoolConfig   `toml:"spool" yaml:"spool"`
	Archive ArchiveConfig `toml:"archive" yaml:"archive"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// BufferConfig holds growable buffer settings
type BufferConfig struct {
	ChunkSize     int      `toml:"chunk_size" yaml:"chunk_size"`
	MaxAllocation ByteSize `toml:"max_allocation" yaml:"max_allocation"`
}

// MoveConfig holds settings for the cross-device copy fallback
type MoveConfig struct {
	BufferSize ByteSize `toml:"buffer_size" yaml:"buffer_size"`
	Sync       bool     `toml:"sync" yaml:"sync"`
}

// SpoolConfig holds spool writer settings
type SpoolConfig struct {
	Dir            string   `toml:"dir" yaml:"dir"`
	Name           string   `toml:"name" yaml:"name"`
	MaxSize        ByteSize `toml:"max_size" yaml:"max_size"`
	RotateInterval Duration `toml:"rotate_interval" yaml:"rotate_interval"`
}

// ArchiveConfig holds archiver, catalog and inbox watcher settings
type ArchiveConfig struct {
	Dir         string   `toml:"dir" yaml:"dir"`
	CatalogPath string   `toml:"catalog_path" yaml:"catalog_path"`
	InboxDir    string   `toml:"inbox_dir" yaml:"inbox_dir"`
	Pattern     string   `toml:"pattern" yaml:"pattern"`
	Retention   Duration `toml:"retention" yaml:"retention"`
	Compress    bool     `toml:"compress" yaml:"compress"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string such as "90s", "1h" or "30d"
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = timex.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// ByteSize is a size in bytes that accepts suffixed values such as "64KB"
type ByteSize int64

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize parses a plain or suffixed (B, KB, MB, GB) size
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			factor = u.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %d", n)
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return ByteSize(n * factor), nil
}

// UnmarshalText parses a size string
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// UnmarshalTOML accepts both integers and strings
func (b *ByteSize) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("negative size %d", v)
		}
		*b = ByteSize(v)
		return nil
	case string:
		return b.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("unsupported size value %v", data)
	}
}

// UnmarshalYAML parses a size scalar
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	return b.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := newWithDefaults()
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		code := idoerr.CodeConfigError
		if os.IsNotExist(err) {
			code = idoerr.CodeNotFound
		}
		return nil, idoerrors.NewErrorBuilder(idoerrors.ModuleConfig).
			Operation("load").
			Messagef("config file not readable: %s", path).
			Cause(err).
			Code(code).
			Detail("path", path).
			Build()
	}

	// Numeric defaults are set before decoding so that an explicit zero
	// in the file survives and is rejected by Validate.
	cfg := newWithDefaults()
	if err := decode(path, content, cfg); err != nil {
		return nil, idoerrors.NewErrorBuilder(idoerrors.ModuleConfig).
			Operation("parse").
			Messagef("failed to parse config %s", path).
			Cause(err).
			Code(idoerr.CodeConfigError).
			Detail("path", path).
			Build()
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, content []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(content, cfg)
	default:
		_, err := toml.Decode(string(content), cfg)
		return err
	}
}

// DefaultPaths lists the locations searched when no path is configured
func DefaultPaths() []string {
	paths := []string{
		"./configs/idoutils.toml",
		"./idoutils.toml",
		"./idoutils.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "idoutils", "config.toml"))
	}
	return paths
}

// LoadFromEnv loads configuration from IDOUTILS_CONFIG or the first
// default location that exists. It returns a NOT_FOUND error if neither
// yields a file.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, idoerrors.NewErrorBuilder(idoerrors.ModuleConfig).
			Operation("discover").
			Messagef("no config file found, set %s or create configs/idoutils.toml", EnvConfigPath).
			Code(idoerr.CodeNotFound).
			Build()
	}

	return Load(path)
}

func newWithDefaults() *Config {
	return &Config{
		Buffer: BufferConfig{ChunkSize: 2048},
		Move:   MoveConfig{BufferSize: 32 * 1024},
		Spool: SpoolConfig{
			MaxSize:        10 << 20,
			RotateInterval: Duration{time.Hour},
		},
		Archive: ArchiveConfig{Retention: Duration{30 * timex.Day}},
	}
}

// applyDefaults fills in empty names and paths derived from the data dir
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "idoutils"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Spool.Dir == "" {
		c.Spool.Dir = filepath.Join(c.General.DataDir, "spool")
	}
	if c.Spool.Name == "" {
		c.Spool.Name = "ido2db"
	}

	if c.Archive.Dir == "" {
		c.Archive.Dir = filepath.Join(c.General.DataDir, "archive")
	}
	if c.Archive.CatalogPath == "" {
		c.Archive.CatalogPath = filepath.Join(c.General.DataDir, "catalog.db")
	}
	if c.Archive.InboxDir == "" {
		c.Archive.InboxDir = filepath.Join(c.General.DataDir, "inbox")
	}
	if c.Archive.Pattern == "" {
		c.Archive.Pattern = "*.spool"
	}
}

// expandEnvVars expands environment variables in path settings
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Spool.Dir = os.ExpandEnv(c.Spool.Dir)
	c.Archive.Dir = os.ExpandEnv(c.Archive.Dir)
	c.Archive.CatalogPath = os.ExpandEnv(c.Archive.CatalogPath)
	c.Archive.InboxDir = os.ExpandEnv(c.Archive.InboxDir)
}

// Validate checks value ranges. A rotate interval of zero disables
// time-based rotation.
func (c *Config) Validate() error {
	invalid := func(field, reason string) error {
		return idoerrors.NewErrorBuilder(idoerrors.ModuleConfig).
			Operation("validate").
			Messagef("invalid config: %s %s", field, reason).
			Code(idoerr.CodeInvalidConfig).
			Detail("field", field).
			Build()
	}

	if c.Buffer.ChunkSize < 1 {
		return invalid("buffer.chunk_size", "must be at least 1")
	}
	if c.Buffer.MaxAllocation < 0 {
		return invalid("buffer.max_allocation", "must not be negative")
	}
	if c.Move.BufferSize <= 0 {
		return invalid("move.buffer_size", "must be positive")
	}
	if c.Spool.MaxSize <= 0 {
		return invalid("spool.max_size", "must be positive")
	}
	if c.Spool.RotateInterval.Duration < 0 {
		return invalid("spool.rotate_interval", "must not be negative")
	}
	if strings.ContainsAny(c.Spool.Name, `/\`) {
		return invalid("spool.name", "must not contain path separators")
	}
	if _, err := filepath.Match(c.Archive.Pattern, ""); err != nil {
		return invalid("archive.pattern", "is not a valid glob")
	}
	return nil
}
