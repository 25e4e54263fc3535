package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the case search tool.
type Config struct {
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Index   IndexConfig   `yaml:"index" toml:"index"`
	Ingest  IngestConfig  `yaml:"ingest" toml:"ingest"`
	Query   QueryConfig   `yaml:"query" toml:"query"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Serve   ServeConfig   `yaml:"serve" toml:"serve"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Backend     string        `yaml:"backend" toml:"backend"` // "bolt" or "sqlite"
	Path        string        `yaml:"path" toml:"path"`
	LockTimeout time.Duration `yaml:"lock_timeout" toml:"lock_timeout"` // wait for another process's file lock
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	Path          string `yaml:"path" toml:"path"`
	WithFullText  bool   `yaml:"with_full_text" toml:"with_full_text"`
	CommitEvery   int    `yaml:"commit_every" toml:"commit_every"`
	MaxTokenLen   int    `yaml:"max_token_len" toml:"max_token_len"`
	StopwordsFile string `yaml:"stopwords_file" toml:"stopwords_file"`
	DateParts     bool   `yaml:"date_parts" toml:"date_parts"`
}

// IngestConfig holds corpus ingestion configuration.
type IngestConfig struct {
	RawDataPath    string `yaml:"raw_data_path" toml:"raw_data_path"`
	ArchivePattern string `yaml:"archive_pattern" toml:"archive_pattern"`
	EntryPattern   string `yaml:"entry_pattern" toml:"entry_pattern"`
	BatchSize      int    `yaml:"batch_size" toml:"batch_size"`
}

// QueryConfig holds query execution and result limits.
type QueryConfig struct {
	PageSize     int                `yaml:"page_size" toml:"page_size"`
	ExportLimit  int                `yaml:"export_limit" toml:"export_limit"`
	MaxOffset    int                `yaml:"max_offset" toml:"max_offset"`
	PreviewChars int                `yaml:"preview_chars" toml:"preview_chars"`
	Timeout      time.Duration      `yaml:"timeout" toml:"timeout"`
	Boosts       map[string]float64 `yaml:"boosts" toml:"boosts"`
}

// CacheConfig holds query cache configuration. An empty RedisAddr keeps the
// cache in process.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" toml:"enabled"`
	Size      int           `yaml:"size" toml:"size"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl"`
	RedisAddr string        `yaml:"redis_addr" toml:"redis_addr"`
}

// ServeConfig holds HTTP server configuration.
type ServeConfig struct {
	Addr        string  `yaml:"addr" toml:"addr"`
	ExportRate  float64 `yaml:"export_rate" toml:"export_rate"` // exports per second
	ExportBurst int     `yaml:"export_burst" toml:"export_burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     "bolt",
			Path:        filepath.Join("data", "cases.db"),
			LockTimeout: 5 * time.Second,
		},
		Index: IndexConfig{
			Path:         filepath.Join("data", "index"),
			WithFullText: false,
			CommitEvery:  10000,
			MaxTokenLen:  40,
			DateParts:    true,
		},
		Ingest: IngestConfig{
			RawDataPath:    "raw",
			ArchivePattern: "**/*.zip",
			EntryPattern:   "**/*.csv",
			BatchSize:      10240,
		},
		Query: QueryConfig{
			PageSize:     20,
			ExportLimit:  10000,
			MaxOffset:    50000,
			PreviewChars: 240,
			Timeout:      10 * time.Second,
			Boosts: map[string]float64{
				"case_id":   9,
				"case_name": 3,
			},
		},
		Cache: CacheConfig{
			Enabled: false,
			Size:    256,
			TTL:     5 * time.Minute,
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8080",
			ExportRate:  1,
			ExportBurst: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for caselaw.yaml,
// caselaw.toml, then .caselaw/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "caselaw.yaml"),
		filepath.Join(dir, "caselaw.toml"),
		filepath.Join(dir, ".caselaw", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML or TOML file, chosen by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	checks := []struct {
		name  string
		value int
	}{
		{"index.commit_every", c.Index.CommitEvery},
		{"index.max_token_len", c.Index.MaxTokenLen},
		{"ingest.batch_size", c.Ingest.BatchSize},
		{"query.page_size", c.Query.PageSize},
		{"query.export_limit", c.Query.ExportLimit},
		{"query.preview_chars", c.Query.PreviewChars},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", chk.name, chk.value)
		}
	}
	if c.Query.MaxOffset < 0 {
		return fmt.Errorf("query.max_offset must not be negative, got %d", c.Query.MaxOffset)
	}
	return nil
}

// Resolve makes relative data paths absolute against dir.
func (c *Config) Resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Store.Path = abs(c.Store.Path)
	c.Index.Path = abs(c.Index.Path)
	c.Index.StopwordsFile = abs(c.Index.StopwordsFile)
	c.Ingest.RawDataPath = abs(c.Ingest.RawDataPath)
}

// EnsureDataDirs ensures the parent directories of the store and index exist.
func (c *Config) EnsureDataDirs() error {
	for _, dir := range []string{filepath.Dir(c.Store.Path), filepath.Dir(c.Index.Path)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
