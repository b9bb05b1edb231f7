package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the search command and the HTTP server.
type Config struct {
	// Search
	Workers         int      `yaml:"workers"`
	ContextLength   int      `yaml:"context_length"` // negative means unbounded
	Suffixes        []string `yaml:"suffixes"`
	ArchiveSuffix   string   `yaml:"archive_suffix"`
	JunkMarker      string   `yaml:"junk_marker"`
	MaxFileBytes    int64    `yaml:"max_file_bytes"` // 0 means unlimited
	IncludeArchives bool     `yaml:"include_archives"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	Port         string        `yaml:"port"`
	APIKey       string        `yaml:"api_key"`
	SearchRoot   string        `yaml:"search_root"`
	JobWorkers   int           `yaml:"job_workers"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	JobTTL       time.Duration `yaml:"job_ttl"`
	StatsWindow  time.Duration `yaml:"stats_window"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		ContextLength:   40,
		Suffixes:        []string{".docx"},
		ArchiveSuffix:   ".zip",
		JunkMarker:      "__MACOSX",
		MaxFileBytes:    52428800, // 50MB
		IncludeArchives: true,

		LogLevel:  "warn",
		LogFormat: "text",

		Port:         "8090",
		SearchRoot:   ".",
		JobWorkers:   2,
		MaxQueueSize: 100,
		JobTTL:       1 * time.Hour,
		StatsWindow:  1 * time.Hour,
	}
}

// fileConfig mirrors Config with pointers so that explicit zero values in
// the file still override defaults.
type fileConfig struct {
	Workers         *int     `yaml:"workers"`
	ContextLength   *int     `yaml:"context_length"`
	Suffixes        []string `yaml:"suffixes"`
	ArchiveSuffix   *string  `yaml:"archive_suffix"`
	JunkMarker      *string  `yaml:"junk_marker"`
	MaxFileBytes    *int64   `yaml:"max_file_bytes"`
	IncludeArchives *bool    `yaml:"include_archives"`
	LogLevel        *string  `yaml:"log_level"`
	LogFormat       *string  `yaml:"log_format"`
	Port            *string  `yaml:"port"`
	APIKey          *string  `yaml:"api_key"`
	SearchRoot      *string  `yaml:"search_root"`
	JobWorkers      *int     `yaml:"job_workers"`
	MaxQueueSize    *int     `yaml:"max_queue_size"`
	JobTTL          *string  `yaml:"job_ttl"`
	StatsWindow     *string  `yaml:"stats_window"`
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and DOCGREP_* environment
// variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setInt(&c.Workers, fc.Workers)
	setInt(&c.ContextLength, fc.ContextLength)
	if len(fc.Suffixes) > 0 {
		c.Suffixes = fc.Suffixes
	}
	setString(&c.ArchiveSuffix, fc.ArchiveSuffix)
	setString(&c.JunkMarker, fc.JunkMarker)
	if fc.MaxFileBytes != nil {
		c.MaxFileBytes = *fc.MaxFileBytes
	}
	if fc.IncludeArchives != nil {
		c.IncludeArchives = *fc.IncludeArchives
	}
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.Port, fc.Port)
	setString(&c.APIKey, fc.APIKey)
	setString(&c.SearchRoot, fc.SearchRoot)
	setInt(&c.JobWorkers, fc.JobWorkers)
	setInt(&c.MaxQueueSize, fc.MaxQueueSize)
	if err := setDuration(&c.JobTTL, fc.JobTTL); err != nil {
		return fmt.Errorf("invalid job_ttl: %w", err)
	}
	if err := setDuration(&c.StatsWindow, fc.StatsWindow); err != nil {
		return fmt.Errorf("invalid stats_window: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Workers = envInt("DOCGREP_WORKERS", c.Workers)
	c.ContextLength = envInt("DOCGREP_CONTEXT_LENGTH", c.ContextLength)
	if v := os.Getenv("DOCGREP_SUFFIXES"); v != "" {
		c.Suffixes = splitList(v)
	}
	c.ArchiveSuffix = envOr("DOCGREP_ARCHIVE_SUFFIX", c.ArchiveSuffix)
	c.JunkMarker = envOr("DOCGREP_JUNK_MARKER", c.JunkMarker)
	c.MaxFileBytes = envInt64("DOCGREP_MAX_FILE_BYTES", c.MaxFileBytes)
	c.IncludeArchives = envBool("DOCGREP_INCLUDE_ARCHIVES", c.IncludeArchives)
	c.LogLevel = envOr("DOCGREP_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("DOCGREP_LOG_FORMAT", c.LogFormat)
	c.Port = envOr("DOCGREP_PORT", c.Port)
	c.APIKey = envOr("DOCGREP_API_KEY", c.APIKey)
	c.SearchRoot = envOr("DOCGREP_SEARCH_ROOT", c.SearchRoot)
	c.JobWorkers = envInt("DOCGREP_JOB_WORKERS", c.JobWorkers)
	c.MaxQueueSize = envInt("DOCGREP_MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.JobTTL = envDuration("DOCGREP_JOB_TTL", c.JobTTL)
	c.StatsWindow = envDuration("DOCGREP_STATS_WINDOW", c.StatsWindow)
}

func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if len(c.Suffixes) == 0 {
		return fmt.Errorf("at least one suffix is required")
	}
	for _, s := range c.Suffixes {
		if !strings.HasPrefix(s, ".") || len(s) < 2 {
			return fmt.Errorf("suffix %q must start with a dot", s)
		}
	}
	if c.ArchiveSuffix != "" && !strings.HasPrefix(c.ArchiveSuffix, ".") {
		return fmt.Errorf("archive_suffix %q must start with a dot", c.ArchiveSuffix)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if c.JobWorkers <= 0 {
		return fmt.Errorf("job_workers must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive")
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("job_ttl must be positive")
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
