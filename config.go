package kgqa

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bbiangul/kgqa/chunker"
	"github.com/bbiangul/kgqa/retrieval"
	"github.com/bbiangul/kgqa/store"
)

// Config holds all configuration for the kgqa engine and its server.
type Config struct {
	// Chunking, in characters.
	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// SimilarityThreshold is the minimum ratio for fuzzy entity resolution.
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// StoreBackend selects the graph registry: memory (default), sqlite or
	// badger. StorePath is the database file for sqlite and the data
	// directory for badger; badger with an empty path runs in memory.
	StoreBackend string `json:"store_backend" yaml:"store_backend"`
	StorePath    string `json:"store_path" yaml:"store_path"`

	// Logging. LogFile enables a rotating log file next to stdout.
	LogLevel      string `json:"log_level" yaml:"log_level"` // debug, info, warn, error
	LogFile       string `json:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" yaml:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days" yaml:"log_max_age_days"`

	// Addr is the listen address of the HTTP server.
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults: in-memory registry,
// 1000/200 character chunks and a 0.6 similarity threshold.
func DefaultConfig() Config {
	return Config{
		ChunkSize:           chunker.DefaultChunkSize,
		ChunkOverlap:        chunker.DefaultChunkOverlap,
		SimilarityThreshold: retrieval.DefaultThreshold,
		StoreBackend:        store.BackendMemory,
		LogLevel:            "info",
		LogMaxSizeMB:        100,
		LogMaxBackups:       3,
		LogMaxAgeDays:       28,
		Addr:                ":8080",
	}
}

// LoadConfig reads a YAML (or JSON) file over DefaultConfig. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("kgqa.LoadConfig: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("kgqa.LoadConfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// envPrefix prefixes every environment override.
const envPrefix = "KGQA_"

// ApplyEnv overrides fields from KGQA_* environment variables. Malformed
// numbers are logged and ignored.
func (c *Config) ApplyEnv() {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			slog.Warn("config: ignoring malformed env var", "name", envPrefix+name, "value", v)
			return
		}
		*dst = n
	}

	num("CHUNK_SIZE", &c.ChunkSize)
	num("CHUNK_OVERLAP", &c.ChunkOverlap)
	if v, ok := os.LookupEnv(envPrefix + "SIMILARITY_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.SimilarityThreshold = f
		} else {
			slog.Warn("config: ignoring malformed env var", "name", envPrefix+"SIMILARITY_THRESHOLD", "value", v)
		}
	}
	str("STORE_BACKEND", &c.StoreBackend)
	str("STORE_PATH", &c.StorePath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)
	str("ADDR", &c.Addr)
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize < 0:
		return fmt.Errorf("%w: chunk_size must not be negative", ErrInvalidConfig)
	case c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	case c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity_threshold must be within [0, 1]", ErrInvalidConfig)
	}

	switch c.StoreBackend {
	case "", store.BackendMemory, store.BackendBadger:
	case store.BackendSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("%w: store_path is required for the sqlite backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, s)
	}
}
